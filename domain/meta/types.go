package meta

import (
	"fmt"
	"strings"
)

// ============================================================================
// MEASURES & METHODS (Canonical tags, never change)
// ============================================================================

// EffectMeasure identifies the effect-size scale a synthesis is pooled on.
type EffectMeasure string

const (
	MeasureSMD EffectMeasure = "smd" // Standardized mean difference (Hedges' g)
	MeasureMD  EffectMeasure = "md"  // Raw mean difference
	MeasureOR  EffectMeasure = "or"  // Odds ratio, pooled in log space
	MeasureRR  EffectMeasure = "rr"  // Risk ratio, pooled in log space
	MeasureRD  EffectMeasure = "rd"  // Risk difference
	MeasureHR  EffectMeasure = "hr"  // Hazard ratio, pre-computed log effect + SE only
)

// ParseMeasure normalizes a measure tag. Unknown tags are rejected so that
// request validation can fail loudly; the calculator itself treats any
// unrecognized tag as pre-computed-only.
func ParseMeasure(s string) (EffectMeasure, error) {
	m := EffectMeasure(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MeasureSMD, MeasureMD, MeasureOR, MeasureRR, MeasureRD, MeasureHR:
		return m, nil
	}
	return "", fmt.Errorf("unknown effect measure %q", s)
}

// IsLogScale reports whether pooled effects for this measure live on the
// log scale (display code exponentiates before presenting).
func (m EffectMeasure) IsLogScale() bool {
	return m == MeasureOR || m == MeasureRR || m == MeasureHR
}

func (m EffectMeasure) String() string { return string(m) }

// PoolingMethod selects the weighting model.
type PoolingMethod string

const (
	MethodFixed  PoolingMethod = "fixed"  // Inverse-variance fixed-effect
	MethodRandom PoolingMethod = "random" // DerSimonian-Laird random-effects
)

// ParseMethod normalizes a pooling method tag.
func ParseMethod(s string) (PoolingMethod, error) {
	m := PoolingMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodFixed, MethodRandom:
		return m, nil
	}
	return "", fmt.Errorf("unknown pooling method %q", s)
}

func (m PoolingMethod) String() string { return string(m) }

// ============================================================================
// STUDY INPUT
// ============================================================================

// StudyRecord is one row of meta-analysis input. Field groups are optional
// and resolved per measure: continuous (N1..SD2), binary (Events1..Total2),
// pre-computed (Effect, SE). Nil means absent; zero is a legal value for
// every field (a mean of 0 is data, not a gap).
type StudyRecord struct {
	Label string `json:"label,omitempty"` // Display name, e.g. "Smith 2019"

	// Continuous-outcome group (arm 1 = treatment, arm 2 = control)
	N1    *int     `json:"n1,omitempty"`
	Mean1 *float64 `json:"mean1,omitempty"`
	SD1   *float64 `json:"sd1,omitempty"`
	N2    *int     `json:"n2,omitempty"`
	Mean2 *float64 `json:"mean2,omitempty"`
	SD2   *float64 `json:"sd2,omitempty"`

	// Binary-outcome group
	Events1 *int `json:"events1,omitempty"`
	Total1  *int `json:"total1,omitempty"`
	Events2 *int `json:"events2,omitempty"`
	Total2  *int `json:"total2,omitempty"`

	// Pre-computed group (effect on the measure's natural scale, log scale
	// for ratio measures)
	Effect *float64 `json:"effect,omitempty"`
	SE     *float64 `json:"se,omitempty"`
}

// NewContinuousStudy builds a record from per-arm summary statistics.
func NewContinuousStudy(label string, n1 int, mean1, sd1 float64, n2 int, mean2, sd2 float64) StudyRecord {
	return StudyRecord{
		Label: label,
		N1:    &n1, Mean1: &mean1, SD1: &sd1,
		N2: &n2, Mean2: &mean2, SD2: &sd2,
	}
}

// NewBinaryStudy builds a record from 2x2 event counts.
func NewBinaryStudy(label string, events1, total1, events2, total2 int) StudyRecord {
	return StudyRecord{
		Label:   label,
		Events1: &events1, Total1: &total1,
		Events2: &events2, Total2: &total2,
	}
}

// NewPrecomputedStudy builds a record from an externally derived estimate.
func NewPrecomputedStudy(label string, effect, se float64) StudyRecord {
	return StudyRecord{Label: label, Effect: &effect, SE: &se}
}

// HasContinuous reports whether the full continuous group is present.
func (r StudyRecord) HasContinuous() bool {
	return r.N1 != nil && r.Mean1 != nil && r.SD1 != nil &&
		r.N2 != nil && r.Mean2 != nil && r.SD2 != nil
}

// HasBinary reports whether the full binary group is present.
func (r StudyRecord) HasBinary() bool {
	return r.Events1 != nil && r.Total1 != nil && r.Events2 != nil && r.Total2 != nil
}

// HasPrecomputed reports whether the pre-computed pair is present.
func (r StudyRecord) HasPrecomputed() bool {
	return r.Effect != nil && r.SE != nil
}

// ============================================================================
// DERIVED OUTPUT (Never persisted by this package)
// ============================================================================

// NormalizedEffect is one study's contribution on the pooling scale.
// INVARIANTS:
// - SE >= 0 and Variance = SE^2
// - Variance > 0 for any effect that survives to pooling
// - Effect, SE, Variance are finite
type NormalizedEffect struct {
	Effect   float64 `json:"effect"`
	SE       float64 `json:"se"`
	Variance float64 `json:"variance"`
}

// PooledResult is the combined estimate for one synthesis.
// INVARIANTS:
// - Weights has one entry per surviving study, in surviving-study order,
//   expressed as percentages summing to 100
// - DF = surviving study count - 1
// - I2 in [0, 100]; P and PHet in [0, 1]; no field is ever NaN/Inf
// - Tau2 is present only under the random-effects method
type PooledResult struct {
	Effect  float64   `json:"effect"`
	SE      float64   `json:"se"`
	CILower float64   `json:"ci_lower"` // 95% Wald bound, effect - 1.96*se
	CIUpper float64   `json:"ci_upper"` // 95% Wald bound, effect + 1.96*se
	Z       float64   `json:"z"`
	P       float64   `json:"p"` // Two-sided, standard normal
	Weights []float64 `json:"weights"`
	Q       float64   `json:"q"`  // Cochran's Q
	DF      int       `json:"df"` // Surviving studies - 1
	PHet    float64   `json:"p_het"`
	I2      float64   `json:"i2"`             // Heterogeneity percentage, 0-100
	Tau2    *float64  `json:"tau2,omitempty"` // Between-study variance (random only)
}
