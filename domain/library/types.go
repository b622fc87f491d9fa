package library

import (
	"strings"
	"unicode"

	"gometa/domain/core"
)

// ReferenceSource identifies which bibliographic database a record came from
type ReferenceSource string

const (
	SourcePubMed   ReferenceSource = "pubmed"
	SourceEmbase   ReferenceSource = "embase"
	SourceScopus   ReferenceSource = "scopus"
	SourceCochrane ReferenceSource = "cochrane"
	SourceManual   ReferenceSource = "manual"
)

// Reference represents one imported bibliographic record. Search exports
// from multiple databases overlap heavily, so references carry enough
// identity (DOI, title, year) for the deduplicator to reconcile them.
type Reference struct {
	ID      core.ReferenceID `json:"id"`
	Title   string           `json:"title"`
	Authors []string         `json:"authors,omitempty"`
	Year    int              `json:"year,omitempty"` // 0 when the export omitted it
	Journal string           `json:"journal,omitempty"`
	DOI     string           `json:"doi,omitempty"`
	Source  ReferenceSource  `json:"source,omitempty"`
}

// NewReference creates a reference with a generated identifier
func NewReference(title string, year int) Reference {
	return Reference{
		ID:    core.ReferenceID(core.NewID()),
		Title: title,
		Year:  year,
	}
}

// HasDOI reports whether the record carries a usable DOI
func (r Reference) HasDOI() bool {
	return NormalizeDOI(r.DOI) != ""
}

// NormalizeDOI canonicalizes a DOI for identity comparison: lowercased,
// trimmed, with resolver URL and "doi:" prefixes stripped. Returns ""
// for records without one.
func NormalizeDOI(doi string) string {
	s := strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

// NormalizeTitle canonicalizes a title for identity comparison:
// lowercased with every run of non-alphanumeric characters collapsed to
// a single space. "The STAR*D Trial." and "the star-d trial" compare
// equal.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingSpace := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}
