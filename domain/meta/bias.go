package meta

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EggerResult is the output of Egger's regression test for small-study
// effects (funnel asymmetry). A positive intercept means small studies
// report larger effects than precise ones.
type EggerResult struct {
	Intercept float64 `json:"intercept"`
	SE        float64 `json:"se"` // Standard error of the intercept
	T         float64 `json:"t"`
	P         float64 `json:"p"` // Two-sided, Student's t on n-2 df
	Slope     float64 `json:"slope"`
	Studies   int     `json:"studies"`
}

// EggerTest regresses the standardized effect (effect/se) on precision
// (1/se) by ordinary least squares and tests the intercept against zero.
// It needs at least 3 normalized effects and enough spread in the standard
// errors to identify the regression; otherwise it returns nil (not
// testable, not an error).
func EggerTest(effects []NormalizedEffect) *EggerResult {
	n := len(effects)
	if n < 3 {
		return nil
	}

	x := make([]float64, n) // precision
	y := make([]float64, n) // standardized effect
	for i, eff := range effects {
		x[i] = 1.0 / eff.SE
		y[i] = eff.Effect / eff.SE
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	meanX := stat.Mean(x, nil)
	var sxx, rss float64
	for i := range x {
		dx := x[i] - meanX
		sxx += dx * dx

		resid := y[i] - (alpha + beta*x[i])
		rss += resid * resid
	}
	if sxx == 0 {
		// Identical standard errors collapse the design matrix.
		return nil
	}

	s2 := rss / float64(n-2)
	seAlpha := math.Sqrt(s2 * (1.0/float64(n) + meanX*meanX/sxx))
	if seAlpha <= 0 || math.IsNaN(seAlpha) || math.IsInf(seAlpha, 0) {
		return nil
	}

	t := alpha / seAlpha
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p := 2.0 * (1.0 - tDist.CDF(math.Abs(t)))

	return &EggerResult{
		Intercept: alpha,
		SE:        seAlpha,
		T:         t,
		P:         p,
		Slope:     beta,
		Studies:   n,
	}
}
