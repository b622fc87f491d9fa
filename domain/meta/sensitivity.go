package meta

// LeaveOneOutRow is one re-pooling with a single study held out.
type LeaveOneOutRow struct {
	Index   int              `json:"index"` // Input index of the omitted study
	Label   string           `json:"label,omitempty"`
	Omitted NormalizedEffect `json:"omitted"`          // The held-out study's own normalized effect
	Result  *PooledResult    `json:"result,omitempty"` // Pool of the remaining studies; nil when none remain
}

// LeaveOneOut re-pools the study set once per poolable study with that
// study omitted, exposing how much any single study drives the combined
// estimate. Rows appear in surviving-study order; non-poolable records
// contribute no row (they carry no weight to remove).
func LeaveOneOut(records []StudyRecord, measure EffectMeasure, method PoolingMethod) []LeaveOneOutRow {
	effects, indices := normalizeIndexed(records, measure)

	rows := make([]LeaveOneOutRow, 0, len(effects))
	for k := range effects {
		rest := make([]NormalizedEffect, 0, len(effects)-1)
		rest = append(rest, effects[:k]...)
		rest = append(rest, effects[k+1:]...)

		rows = append(rows, LeaveOneOutRow{
			Index:   indices[k],
			Label:   records[indices[k]].Label,
			Omitted: effects[k],
			Result:  PoolEffects(rest, method),
		})
	}
	return rows
}

// CumulativeRow is the pooled estimate after admitting one more study.
type CumulativeRow struct {
	Index   int           `json:"index"` // Input index of the newest study
	Label   string        `json:"label,omitempty"`
	Studies int           `json:"studies"` // Number of studies pooled so far
	Result  *PooledResult `json:"result"`
}

// Cumulative pools the first k poolable studies for k = 1..n in input
// order. Callers sort the records first (typically by publication year)
// to read the accumulation of evidence over time.
func Cumulative(records []StudyRecord, measure EffectMeasure, method PoolingMethod) []CumulativeRow {
	effects, indices := normalizeIndexed(records, measure)

	rows := make([]CumulativeRow, 0, len(effects))
	for k := range effects {
		rows = append(rows, CumulativeRow{
			Index:   indices[k],
			Label:   records[indices[k]].Label,
			Studies: k + 1,
			Result:  PoolEffects(effects[:k+1], method),
		})
	}
	return rows
}
