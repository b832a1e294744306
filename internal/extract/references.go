package extract

import (
	"regexp"

	"github.com/nao1215/sitecheck/internal/model"
)

// attrRegex matches double-quoted href and src attribute values.
// The match is lexical and also catches suffixed names such as data-src.
var attrRegex = regexp.MustCompile(`(href|src)="([^"]+)"`)

// References returns every href/src value in content in order of appearance.
// Excluded references are kept; callers filter with Reference.IsExcluded.
func References(content []byte) []model.Reference {
	matches := attrRegex.FindAllSubmatchIndex(content, -1)
	refs := make([]model.Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, model.Reference{
			Attr:   string(content[m[2]:m[3]]),
			Raw:    string(content[m[4]:m[5]]),
			Offset: m[0],
		})
	}
	return refs
}

// LocalReferences returns the references of content that must be resolved,
// dropping fragments, special schemes and external URLs.
func LocalReferences(content []byte) []model.Reference {
	all := References(content)
	local := make([]model.Reference, 0, len(all))
	for _, ref := range all {
		if ref.IsExcluded() {
			continue
		}
		local = append(local, ref)
	}
	return local
}
