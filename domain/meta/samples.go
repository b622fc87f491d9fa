package meta

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"gometa/domain/core"
)

// ArmSummary holds the per-arm statistics a continuous StudyRecord needs.
type ArmSummary struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"` // Sample standard deviation (n-1 denominator)
}

// SummarizeArm reduces raw per-subject values to the summary statistics
// used for pooling. At least two values are required for a sample SD.
func SummarizeArm(values []float64) (*ArmSummary, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("%w: arm needs at least 2 observations, got %d", core.ErrEmptySample, len(values))
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, fmt.Errorf("computing arm mean: %w", err)
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, fmt.Errorf("computing arm standard deviation: %w", err)
	}

	return &ArmSummary{N: len(values), Mean: mean, SD: sd}, nil
}

// NewContinuousRecord builds a poolable continuous StudyRecord straight
// from raw per-subject measurements for both arms. Extraction flows that
// hold individual participant data use this instead of re-deriving
// summary statistics by hand.
func NewContinuousRecord(label string, treatment, control []float64) (StudyRecord, error) {
	t, err := SummarizeArm(treatment)
	if err != nil {
		return StudyRecord{}, fmt.Errorf("treatment arm: %w", err)
	}
	c, err := SummarizeArm(control)
	if err != nil {
		return StudyRecord{}, fmt.Errorf("control arm: %w", err)
	}

	return NewContinuousStudy(label, t.N, t.Mean, t.SD, c.N, c.Mean, c.SD), nil
}
