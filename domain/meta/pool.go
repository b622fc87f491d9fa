package meta

import "math"

// Pool maps records through ComputeEffect, silently drops the ones that
// cannot contribute, and combines the survivors under the given method.
// It returns nil when no study is poolable; a single survivor degenerates
// to that study's own estimate. Callers wanting a minimum study count
// enforce it themselves before invoking.
func Pool(records []StudyRecord, measure EffectMeasure, method PoolingMethod) *PooledResult {
	return PoolEffects(NormalizeStudies(records, measure), method)
}

// PoolEffects combines pre-normalized effects. It depends only on the
// NormalizedEffect shape, so callers that derive effects elsewhere can
// pool without going through ComputeEffect.
func PoolEffects(effects []NormalizedEffect, method PoolingMethod) *PooledResult {
	n := len(effects)
	if n == 0 {
		return nil
	}

	// Inverse-variance fixed-effect weights.
	weights := make([]float64, n)
	var sumW, sumWE, sumW2 float64
	for i, eff := range effects {
		w := 1.0 / eff.Variance
		weights[i] = w
		sumW += w
		sumWE += w * eff.Effect
		sumW2 += w * w
	}

	effectFE := sumWE / sumW
	varianceFE := 1.0 / sumW

	// Cochran's Q against the fixed-effect estimate. With one survivor
	// the deviation is identically zero, so Q=0 and df=0 fall out without
	// special casing.
	var q float64
	for i, eff := range effects {
		diff := eff.Effect - effectFE
		q += weights[i] * diff * diff
	}
	df := n - 1

	pHet := 1.0 - ChiSquaredCDF(q, float64(df))

	i2 := 0.0
	if q > 0 {
		i2 = math.Max(0, (q-float64(df))/q*100.0)
	}

	pooledEffect := effectFE
	pooledVariance := varianceFE
	var tau2 *float64

	if method == MethodRandom {
		// DerSimonian-Laird between-study variance. C > 0 whenever two or
		// more positive weights exist; the C <= 0 degenerate case (single
		// survivor) clamps tau2 to 0 rather than dividing.
		c := sumW - sumW2/sumW
		t2 := 0.0
		if c > 0 {
			t2 = math.Max(0, (q-float64(df))/c)
		}
		tau2 = &t2

		var sumWR, sumWRE float64
		for i, eff := range effects {
			w := 1.0 / (eff.Variance + t2)
			weights[i] = w
			sumWR += w
			sumWRE += w * eff.Effect
		}
		pooledEffect = sumWRE / sumWR
		pooledVariance = 1.0 / sumWR
	}

	se := math.Sqrt(pooledVariance)
	z := pooledEffect / se
	p := twoSidedP(z)

	// Reported weights are percentages of the total (fixed or random
	// weights depending on method), in surviving-study order.
	var total float64
	for _, w := range weights {
		total += w
	}
	percentages := make([]float64, n)
	for i, w := range weights {
		percentages[i] = w / total * 100.0
	}

	return &PooledResult{
		Effect:  pooledEffect,
		SE:      se,
		CILower: pooledEffect - 1.96*se,
		CIUpper: pooledEffect + 1.96*se,
		Z:       z,
		P:       p,
		Weights: percentages,
		Q:       q,
		DF:      df,
		PHet:    pHet,
		I2:      i2,
		Tau2:    tau2,
	}
}
