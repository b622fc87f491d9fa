package meta

import "math"

// ComputeEffect converts one study record into a normalized
// (effect, SE, variance) triple for the given measure.
//
// Resolution order: MD/SMD consult the continuous group first, falling
// back to the pre-computed pair only when the group is incomplete; OR/RR/RD
// consult the binary group first with the same fallback; HR and any
// unrecognized tag consult the pre-computed pair only.
//
// The return is nil for any record without sufficient data under the
// measure's rules, and for any computed triple that violates the
// NormalizedEffect invariants (non-finite values, variance <= 0). Callers
// exclude nils from pooling; a nil is never an error.
func ComputeEffect(record StudyRecord, measure EffectMeasure) *NormalizedEffect {
	switch measure {
	case MeasureMD:
		if record.HasContinuous() {
			return meanDifference(record)
		}
		return precomputed(record)
	case MeasureSMD:
		if record.HasContinuous() {
			return hedgesG(record)
		}
		return precomputed(record)
	case MeasureOR:
		if record.HasBinary() {
			return oddsRatio(record)
		}
		return precomputed(record)
	case MeasureRR:
		if record.HasBinary() {
			return riskRatio(record)
		}
		return precomputed(record)
	case MeasureRD:
		if record.HasBinary() {
			return riskDifference(record)
		}
		return precomputed(record)
	default:
		// HR and anything unrecognized: no raw-data derivation exists.
		return precomputed(record)
	}
}

// NormalizeStudies maps records through ComputeEffect and drops the nils.
// The surviving effects keep the relative order of their source records.
func NormalizeStudies(records []StudyRecord, measure EffectMeasure) []NormalizedEffect {
	effects := make([]NormalizedEffect, 0, len(records))
	for _, record := range records {
		if eff := ComputeEffect(record, measure); eff != nil {
			effects = append(effects, *eff)
		}
	}
	return effects
}

// normalizeIndexed is NormalizeStudies plus the input index of each
// survivor, for analyses that re-pool subsets.
func normalizeIndexed(records []StudyRecord, measure EffectMeasure) ([]NormalizedEffect, []int) {
	effects := make([]NormalizedEffect, 0, len(records))
	indices := make([]int, 0, len(records))
	for i, record := range records {
		if eff := ComputeEffect(record, measure); eff != nil {
			effects = append(effects, *eff)
			indices = append(indices, i)
		}
	}
	return effects, indices
}

func meanDifference(r StudyRecord) *NormalizedEffect {
	n1, n2 := float64(*r.N1), float64(*r.N2)
	sd1, sd2 := *r.SD1, *r.SD2

	effect := *r.Mean1 - *r.Mean2
	variance := sd1*sd1/n1 + sd2*sd2/n2
	return newNormalized(effect, variance)
}

func hedgesG(r StudyRecord) *NormalizedEffect {
	n1, n2 := float64(*r.N1), float64(*r.N2)
	sd1, sd2 := *r.SD1, *r.SD2

	df := n1 + n2 - 2
	if df <= 0 {
		return nil
	}
	pooledSD := math.Sqrt(((n1-1)*sd1*sd1 + (n2-1)*sd2*sd2) / df)
	if pooledSD == 0 {
		return nil
	}

	d := (*r.Mean1 - *r.Mean2) / pooledSD
	j := 1.0 - 3.0/(4.0*df-1.0) // small-sample bias correction
	g := d * j

	variance := (n1+n2)/(n1*n2) + g*g/(2.0*(n1+n2))
	return newNormalized(g, variance)
}

func oddsRatio(r StudyRecord) *NormalizedEffect {
	a, b, c, d := correctedCells(r)

	effect := math.Log((a * d) / (b * c))
	variance := 1.0/a + 1.0/b + 1.0/c + 1.0/d
	return newNormalized(effect, variance)
}

func riskRatio(r StudyRecord) *NormalizedEffect {
	a, b, c, d := correctedCells(r)

	p1 := a / (a + b)
	p2 := c / (c + d)
	effect := math.Log(p1 / p2)
	variance := 1.0/a - 1.0/(a+b) + 1.0/c - 1.0/(c+d)
	return newNormalized(effect, variance)
}

func riskDifference(r StudyRecord) *NormalizedEffect {
	// RD uses the raw cells: the continuity correction never applies here.
	e1, t1 := float64(*r.Events1), float64(*r.Total1)
	e2, t2 := float64(*r.Events2), float64(*r.Total2)

	p1 := e1 / t1
	p2 := e2 / t2
	effect := p1 - p2
	variance := p1*(1.0-p1)/t1 + p2*(1.0-p2)/t2
	return newNormalized(effect, variance)
}

// correctedCells lays out the 2x2 table. When either arm has zero events
// the continuity correction adds 0.5 to ALL FOUR cells, not just the zero
// cell; this is the convention the product has always used and downstream
// results depend on it.
func correctedCells(r StudyRecord) (a, b, c, d float64) {
	a = float64(*r.Events1)
	b = float64(*r.Total1 - *r.Events1)
	c = float64(*r.Events2)
	d = float64(*r.Total2 - *r.Events2)

	if a == 0 || c == 0 {
		a += 0.5
		b += 0.5
		c += 0.5
		d += 0.5
	}
	return a, b, c, d
}

func precomputed(r StudyRecord) *NormalizedEffect {
	if !r.HasPrecomputed() {
		return nil
	}
	se := *r.SE
	return newNormalized(*r.Effect, se*se)
}

// newNormalized is the single gate every computed triple passes through:
// non-finite values and non-positive variances mark the record not
// poolable, so degenerate arithmetic upstream can never leak NaN/Inf into
// pooling.
func newNormalized(effect, variance float64) *NormalizedEffect {
	if math.IsNaN(effect) || math.IsInf(effect, 0) {
		return nil
	}
	if math.IsNaN(variance) || math.IsInf(variance, 0) || variance <= 0 {
		return nil
	}
	return &NormalizedEffect{
		Effect:   effect,
		SE:       math.Sqrt(variance),
		Variance: variance,
	}
}
