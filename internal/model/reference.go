package model

import "strings"

// excludedPrefixes lists the reference prefixes that are never resolved.
// They point at same-page fragments, non-navigational schemes or external hosts.
var excludedPrefixes = []string{
	"#",
	"mailto:",
	"tel:",
	"data:",
	"javascript:",
	"http://",
	"https://",
	"//",
}

// Reference is a raw href or src attribute value extracted from a page.
type Reference struct {
	// Raw is the attribute value exactly as it appears in the markup.
	Raw string `json:"raw"`

	// Attr is the attribute name the value was found in ("href" or "src").
	Attr string `json:"attr"`

	// Offset is the byte offset of the attribute in the page text.
	Offset int `json:"offset"`
}

// IsExcluded reports whether the reference is outside the resolution domain.
// The classification is purely lexical.
func (r Reference) IsExcluded() bool {
	return IsExcludedReference(r.Raw)
}

// IsExcludedReference reports whether raw starts with one of the excluded prefixes.
func IsExcludedReference(raw string) bool {
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return true
		}
	}
	return false
}
