package meta

import "math"

// Abramowitz-Stegun 7.1.26 erf coefficients. Pooled p-values are defined
// against this exact approximation (abs error ~1.5e-7 vs the true erf);
// substituting math.Erf or a library CDF changes historical outputs.
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

// NormalCDF returns the standard normal CDF at z using the
// Abramowitz-Stegun polynomial erf approximation.
func NormalCDF(z float64) float64 {
	sign := 1.0
	if z < 0 {
		sign = -1.0
	}
	x := math.Abs(z) / math.Sqrt2

	t := 1.0 / (1.0 + erfP*x)
	y := 1.0 - (((((erfA5*t+erfA4)*t)+erfA3)*t+erfA2)*t+erfA1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}

// ChiSquaredCDF returns the chi-squared CDF at x with df degrees of
// freedom via a truncated incomplete-gamma series. The series is
// self-bounding: at most 200 terms, terminating early once a term drops
// below 1e-10. For x < 0 or df < 1 it returns 0 (defined floor, not an
// error), which makes the df=0 heterogeneity case resolve to p_het = 1.
func ChiSquaredCDF(x, df float64) float64 {
	if x < 0 || df < 1 {
		return 0
	}

	k := df / 2.0
	x2 := x / 2.0

	term := math.Exp(-x2)
	sum := term
	for i := 1; i < 200; i++ {
		term *= x2 / (k + float64(i))
		sum += term
		if term < 1e-10 {
			break
		}
	}

	return 1.0 - sum
}

// twoSidedP converts a z statistic into a two-sided p-value.
func twoSidedP(z float64) float64 {
	return 2.0 * (1.0 - NormalCDF(math.Abs(z)))
}
