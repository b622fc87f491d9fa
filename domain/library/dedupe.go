package library

import "fmt"

// MatchKind labels how a duplicate was identified
type MatchKind string

const (
	MatchDOI        MatchKind = "doi"
	MatchExactTitle MatchKind = "exact_title"
	MatchFuzzyTitle MatchKind = "fuzzy_title"
)

// DuplicatePair records one dropped reference and the earlier record it
// duplicates. Indices point into the input slice so reviewers can audit
// every removal against the raw export.
type DuplicatePair struct {
	KeptIndex    int       `json:"kept_index"`
	DroppedIndex int       `json:"dropped_index"`
	Kind         MatchKind `json:"kind"`
	Confidence   float64   `json:"confidence"` // 1.0 for exact matches, the similarity score for fuzzy ones
}

// DedupeStats summarizes a dedupe pass for the screening report
type DedupeStats struct {
	Total   int               `json:"total"`
	Unique  int               `json:"unique"`
	Removed int               `json:"removed"`
	ByKind  map[MatchKind]int `json:"by_kind,omitempty"`
}

// DedupeResult carries the surviving references plus a full audit trail
// of what was removed and why.
type DedupeResult struct {
	Unique     []Reference     `json:"unique"`
	Duplicates []DuplicatePair `json:"duplicates,omitempty"`
	Stats      DedupeStats     `json:"stats"`
}

// Deduplicator reconciles overlapping database exports. Matching runs in
// priority order per record: DOI identity first, then exact normalized
// title plus year, then bigram similarity against every kept record.
// The first occurrence always survives; later copies are dropped.
//
// INVARIANTS:
//   - Kept references preserve input order
//   - Every input index appears exactly once, in Unique or in Duplicates
//   - A record never matches a record that was itself dropped
type Deduplicator struct {
	// FuzzyThreshold is the minimum bigram similarity for a fuzzy match,
	// in (0, 1]. Records at or above it are considered the same work.
	FuzzyThreshold float64
	// YearTolerance is the maximum publication-year gap a fuzzy match
	// may span. Online-first vs print publication commonly differs by 1.
	// A record with year 0 is compatible with every year.
	YearTolerance int
}

// NewDeduplicator returns a deduplicator with screening defaults
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		FuzzyThreshold: 0.90,
		YearTolerance:  1,
	}
}

// keptEntry caches the normalized identity of a surviving record so the
// fuzzy pass never re-normalizes.
type keptEntry struct {
	index   int
	year    int
	title   string
	bigrams map[string]int
}

// Dedupe removes duplicate references and reports every removal.
func (d *Deduplicator) Dedupe(refs []Reference) DedupeResult {
	result := DedupeResult{
		Unique: make([]Reference, 0, len(refs)),
		Stats: DedupeStats{
			Total:  len(refs),
			ByKind: make(map[MatchKind]int),
		},
	}

	byDOI := make(map[string]int)
	byTitleYear := make(map[string]int)
	var kept []keptEntry

	for i, ref := range refs {
		if pair, ok := d.match(ref, i, byDOI, byTitleYear, kept); ok {
			result.Duplicates = append(result.Duplicates, pair)
			result.Stats.ByKind[pair.Kind]++
			continue
		}

		title := NormalizeTitle(ref.Title)
		if doi := NormalizeDOI(ref.DOI); doi != "" {
			byDOI[doi] = i
		}
		if title != "" {
			byTitleYear[titleYearKey(title, ref.Year)] = i
			kept = append(kept, keptEntry{
				index:   i,
				year:    ref.Year,
				title:   title,
				bigrams: bigramCounts(title),
			})
		}
		result.Unique = append(result.Unique, ref)
	}

	result.Stats.Unique = len(result.Unique)
	result.Stats.Removed = len(result.Duplicates)
	return result
}

// match checks one record against everything kept so far, strongest
// signal first.
func (d *Deduplicator) match(ref Reference, idx int, byDOI, byTitleYear map[string]int, kept []keptEntry) (DuplicatePair, bool) {
	if doi := NormalizeDOI(ref.DOI); doi != "" {
		if keptIdx, ok := byDOI[doi]; ok {
			return DuplicatePair{KeptIndex: keptIdx, DroppedIndex: idx, Kind: MatchDOI, Confidence: 1.0}, true
		}
	}

	title := NormalizeTitle(ref.Title)
	if title == "" {
		// Nothing left to match on; the record survives by default.
		return DuplicatePair{}, false
	}

	if keptIdx, ok := byTitleYear[titleYearKey(title, ref.Year)]; ok {
		return DuplicatePair{KeptIndex: keptIdx, DroppedIndex: idx, Kind: MatchExactTitle, Confidence: 1.0}, true
	}

	// Quadratic over the kept set. Screening loads are thousands of
	// records, not millions, and the bigram maps are precomputed.
	grams := bigramCounts(title)
	for _, entry := range kept {
		if !d.yearsCompatible(ref.Year, entry.year) {
			continue
		}
		if sim := diceSimilarity(grams, entry.bigrams); sim >= d.FuzzyThreshold {
			return DuplicatePair{KeptIndex: entry.index, DroppedIndex: idx, Kind: MatchFuzzyTitle, Confidence: sim}, true
		}
	}

	return DuplicatePair{}, false
}

func (d *Deduplicator) yearsCompatible(a, b int) bool {
	if a == 0 || b == 0 {
		return true
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= d.YearTolerance
}

func titleYearKey(normalizedTitle string, year int) string {
	return fmt.Sprintf("%s|%d", normalizedTitle, year)
}

// bigramCounts builds the character-pair multiset of a normalized title
func bigramCounts(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	grams := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// diceSimilarity is the Sorensen-Dice coefficient over bigram multisets:
// twice the shared pair count over the total pair count. Identical
// strings score 1, disjoint strings score 0.
func diceSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var totalA, totalB, shared int
	for gram, n := range a {
		totalA += n
		if m, ok := b[gram]; ok {
			if n < m {
				shared += n
			} else {
				shared += m
			}
		}
	}
	for _, n := range b {
		totalB += n
	}

	return 2.0 * float64(shared) / float64(totalA+totalB)
}
