package model

import "fmt"

// Kind classifies a diagnostic.
type Kind int

const (
	// KindBrokenLink is a local reference that resolves to nothing on disk.
	KindBrokenLink Kind = iota

	// KindMissingInSitemap is an expected route absent from the sitemap.
	KindMissingInSitemap

	// KindExtraInSitemap is a sitemap route with no matching page directory.
	KindExtraInSitemap

	// KindMissingComponent is a placeholder whose component route does not exist.
	KindMissingComponent
)

// String returns the stable identifier of the kind.
func (k Kind) String() string {
	switch k {
	case KindBrokenLink:
		return "broken_link"
	case KindMissingInSitemap:
		return "missing_in_sitemap"
	case KindExtraInSitemap:
		return "extra_in_sitemap"
	case KindMissingComponent:
		return "missing_component"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its identifier.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes an identifier produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "broken_link":
		*k = KindBrokenLink
	case "missing_in_sitemap":
		*k = KindMissingInSitemap
	case "extra_in_sitemap":
		*k = KindExtraInSitemap
	case "missing_component":
		*k = KindMissingComponent
	default:
		return fmt.Errorf("unknown diagnostic kind %q", string(text))
	}
	return nil
}

// Diagnostic is a single reported inconsistency.
// Source and Raw are empty for sitemap diagnostics.
type Diagnostic struct {
	Kind Kind `json:"kind"`

	// Source is the page path relative to the site root.
	Source string `json:"source,omitempty"`

	// Raw is the reference text, or the placeholder id for component diagnostics.
	Raw string `json:"raw,omitempty"`

	// Resolved is the route the diagnostic is about.
	Resolved Route `json:"resolved"`
}

// Key returns a string that identifies the diagnostic across runs.
func (d Diagnostic) Key() string {
	return d.Kind.String() + "|" + d.Source + "|" + d.Raw + "|" + d.Resolved.String()
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	switch d.Kind {
	case KindBrokenLink:
		return fmt.Sprintf(`%s: unresolved local reference "%s" -> "%s"`, d.Source, d.Raw, d.Resolved)
	case KindMissingComponent:
		return fmt.Sprintf(`%s: placeholder "%s" loads missing component "%s"`, d.Source, d.Raw, d.Resolved)
	case KindMissingInSitemap:
		return fmt.Sprintf("missing in sitemap: %s", d.Resolved)
	case KindExtraInSitemap:
		return fmt.Sprintf("extra in sitemap: %s", d.Resolved)
	default:
		return d.Resolved.String()
	}
}
