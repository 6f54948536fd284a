package tiling

import (
	"math"
)

// ComputeQs returns the set of Q values covering [qMin, qMax] such that the
// mismatch between two consecutive Q planes never exceeds maximumMismatch.
// The values are log-spaced; qMin is clamped to sqrt(11), the smallest Q for
// which the transform statistics hold.
func ComputeQs(qMin, qMax, maximumMismatch float64) []float64 {
	if qMin < math.Sqrt(11.0) {
		qMin = math.Sqrt(11.0)
	}
	if qMax < qMin {
		qMax = qMin
	}
	if maximumMismatch <= 0.0 || maximumMismatch > 0.5 {
		maximumMismatch = 0.2
	}

	qCumulativeMismatch := math.Log(qMax/qMin) / math.Sqrt2
	mismatchStep := 2.0 * math.Sqrt(maximumMismatch/3.0)
	n := int(math.Ceil(qCumulativeMismatch / mismatchStep))
	if n < 1 {
		n = 1
	}
	qMismatchStep := qCumulativeMismatch / float64(n)

	qs := make([]float64, n)
	for i := 0; i < n; i++ {
		qs[i] = qMin * math.Exp(math.Sqrt2*(0.5+float64(i))*qMismatchStep)
	}
	return qs
}
