// Package stats provides the two-sample statistics behind drift
// detection. The only test offered is Welch's unequal-variance t-test,
// which tolerates the different sample sizes and variances produced by a
// sliding reward window against its reference history.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult reports a Welch t-test. P is 1.0 whenever the test could
// not be run (too few samples).
type TTestResult struct {
	T  float64 // t statistic
	DF float64 // Welch-Satterthwaite degrees of freedom
	P  float64 // two-sided p-value
}

// Welch runs Welch's two-sample t-test on a against b. Each sample needs
// at least two observations; otherwise the result is the neutral
// {T: 0, P: 1}. When both samples have zero variance the p-value
// degenerates to exact equality of the means: 1 if equal, 0 otherwise.
func Welch(a, b []float64) TTestResult {
	if len(a) < 2 || len(b) < 2 {
		return TTestResult{P: 1.0}
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	seSq := varA/na + varB/nb
	if seSq == 0 {
		if meanA == meanB {
			return TTestResult{P: 1.0}
		}
		return TTestResult{T: math.Inf(sign(meanA - meanB)), P: 0.0}
	}

	t := (meanA - meanB) / math.Sqrt(seSq)
	df := seSq * seSq / (varA*varA/(na*na*(na-1)) + varB*varB/(nb*nb*(nb-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return TTestResult{T: t, DF: df, P: p}
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}
