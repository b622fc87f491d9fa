package library

import "gometa/domain/core"

// DedupeReportArtifact is the ledger payload for one screening pass. The
// duplicate pairs stay attached so a reviewer can audit every removal.
type DedupeReportArtifact struct {
	Stats          DedupeStats     `json:"stats"`
	Duplicates     []DuplicatePair `json:"duplicates,omitempty"`
	FuzzyThreshold float64         `json:"fuzzy_threshold"`
	YearTolerance  int             `json:"year_tolerance"`
	CreatedAt      core.Timestamp  `json:"created_at"`
}

// ToCoreArtifact converts to a core artifact for ledger storage
func (a *DedupeReportArtifact) ToCoreArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactDedupeReport,
		Payload:   a,
		CreatedAt: a.CreatedAt,
	}
}
