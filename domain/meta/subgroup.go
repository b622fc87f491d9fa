package meta

// Subgroup is a labelled slice of the study set, e.g. by dosage band or
// risk-of-bias rating.
type Subgroup struct {
	Label   string        `json:"label"`
	Studies []StudyRecord `json:"studies"`
}

// SubgroupResult is one group's independent pool.
type SubgroupResult struct {
	Label    string        `json:"label"`
	Included int           `json:"included"`         // Studies that survived to pooling
	Result   *PooledResult `json:"result,omitempty"` // nil when the group had no poolable study
}

// SubgroupAnalysis carries the per-group pools plus the test for subgroup
// differences (Q_between over the group estimates).
type SubgroupAnalysis struct {
	Groups    []SubgroupResult `json:"groups"`
	QBetween  float64          `json:"q_between"`
	DFBetween int              `json:"df_between"` // Groups with a result - 1
	PBetween  float64          `json:"p_between"`
}

// PoolSubgroups pools each group independently under the given measure and
// method, then tests whether the group estimates differ more than their
// standard errors explain. Groups keep their input order; a group with no
// poolable studies keeps its row with a nil result and is excluded from
// the between-group test. Returns nil when no group pools at all.
func PoolSubgroups(groups []Subgroup, measure EffectMeasure, method PoolingMethod) *SubgroupAnalysis {
	results := make([]SubgroupResult, 0, len(groups))

	var pooled []*PooledResult
	for _, g := range groups {
		res := Pool(g.Studies, measure, method)
		included := 0
		if res != nil {
			included = res.DF + 1
			pooled = append(pooled, res)
		}
		results = append(results, SubgroupResult{
			Label:    g.Label,
			Included: included,
			Result:   res,
		})
	}

	k := len(pooled)
	if k == 0 {
		return nil
	}

	// Fixed-effect combination of the group estimates; deviations from it
	// give Q_between on k-1 degrees of freedom. A single pooled group
	// degenerates to Q_between = 0, p = 1, same convention as Cochran's Q
	// for a single study.
	var sumW, sumWE float64
	for _, res := range pooled {
		w := 1.0 / (res.SE * res.SE)
		sumW += w
		sumWE += w * res.Effect
	}
	overall := sumWE / sumW

	var qBetween float64
	for _, res := range pooled {
		w := 1.0 / (res.SE * res.SE)
		diff := res.Effect - overall
		qBetween += w * diff * diff
	}
	dfBetween := k - 1

	return &SubgroupAnalysis{
		Groups:    results,
		QBetween:  qBetween,
		DFBetween: dfBetween,
		PBetween:  1.0 - ChiSquaredCDF(qBetween, float64(dfBetween)),
	}
}
