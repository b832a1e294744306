package config

// File represents the structure of the .sitecheck configuration file.
// A nil slice or map means "keep the default"; an explicitly empty one
// clears it.
type File struct {
	// IgnoredDirs replaces the directory names pruned from the page walk.
	IgnoredDirs []string `yaml:"ignoredDirs,omitempty"`

	// ReservedDirs replaces the top-level directories excluded from expected routes.
	ReservedDirs []string `yaml:"reservedDirs,omitempty"`

	// Ignore adds doublestar glob patterns pruned from the page walk,
	// for example "drafts/**".
	Ignore []string `yaml:"ignore,omitempty"`

	// Sitemap overrides the sitemap path relative to the root.
	Sitemap string `yaml:"sitemap,omitempty"`

	// Components replaces the placeholder id to component route mapping.
	Components map[string]string `yaml:"components,omitempty"`
}
