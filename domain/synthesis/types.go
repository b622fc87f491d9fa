package synthesis

import (
	"strconv"
	"strings"

	"gometa/domain/core"
	"gometa/domain/meta"
)

// SkipCode classifies why a requested analysis produced no pooled result
type SkipCode string

const (
	SkipUnknownMeasure  SkipCode = "unknown_measure"
	SkipUnknownMethod   SkipCode = "unknown_method"
	SkipTooFewStudies   SkipCode = "too_few_studies"
	SkipNothingPoolable SkipCode = "nothing_poolable"
)

// PooledAnalysisArtifact is the ledger payload for one completed pooling.
// It carries everything a reviewer needs to reproduce the number in a
// published forest plot: the inputs' fingerprint, the measure and method,
// and the full pooled result.
type PooledAnalysisArtifact struct {
	AnalysisID  core.AnalysisID          `json:"analysis_id"`
	Label       string                   `json:"label,omitempty"`
	Measure     meta.EffectMeasure       `json:"measure"`
	Method      meta.PoolingMethod       `json:"method"`
	Included    int                      `json:"included"` // Studies that survived normalization
	Excluded    int                      `json:"excluded"` // Studies dropped as unusable
	Result      *meta.PooledResult       `json:"result"`
	Fingerprint core.AnalysisFingerprint `json:"fingerprint"`
	RuntimeMs   int64                    `json:"runtime_ms"`
	CreatedAt   core.Timestamp           `json:"created_at"`
}

// ToCoreArtifact converts to a core artifact for ledger storage
func (a *PooledAnalysisArtifact) ToCoreArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactPooledAnalysis,
		Payload:   a,
		CreatedAt: a.CreatedAt,
	}
}

// SkippedAnalysisArtifact records a request that could not be pooled,
// with a structured code so skip counts can be aggregated.
type SkippedAnalysisArtifact struct {
	AnalysisID core.AnalysisID `json:"analysis_id"`
	Label      string          `json:"label,omitempty"`
	Code       SkipCode        `json:"code"`
	Detail     string          `json:"detail,omitempty"`
	CreatedAt  core.Timestamp  `json:"created_at"`
}

// ToCoreArtifact converts to a core artifact for ledger storage
func (a *SkippedAnalysisArtifact) ToCoreArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactSkippedAnalysis,
		Payload:   a,
		CreatedAt: a.CreatedAt,
	}
}

// ComputeAnalysisFingerprint derives the deterministic identity of one
// pooling request from its studies, measure and method. Identical inputs
// always hash identically, so a re-run can prove it reproduced the
// original analysis.
func ComputeAnalysisFingerprint(studies []meta.StudyRecord, measure meta.EffectMeasure, method meta.PoolingMethod) core.AnalysisFingerprint {
	parts := make([]string, 0, len(studies)+2)
	parts = append(parts, "measure:"+string(measure), "method:"+string(method))
	for _, s := range studies {
		parts = append(parts, "study:"+canonicalStudy(s))
	}
	return core.AnalysisFingerprint(core.ComputeFingerprint(parts...))
}

// canonicalStudy flattens a record into a stable text form. Absent
// optional fields render as "-" so records with different field layouts
// never collide.
func canonicalStudy(s meta.StudyRecord) string {
	fields := []string{
		s.Label,
		canonInt(s.N1), canonFloat(s.Mean1), canonFloat(s.SD1),
		canonInt(s.N2), canonFloat(s.Mean2), canonFloat(s.SD2),
		canonInt(s.Events1), canonInt(s.Total1),
		canonInt(s.Events2), canonInt(s.Total2),
		canonFloat(s.Effect), canonFloat(s.SE),
	}
	return strings.Join(fields, ",")
}

func canonInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func canonFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
