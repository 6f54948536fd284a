package tiling

import (
	"sort"
)

// SnrCurve is a frequency-dependent SNR threshold lookup used to select
// tiles. It is binned in frequency; each bin carries one threshold value.
// A negative value means "always select". Frequencies outside the binned
// domain are never selected.
type SnrCurve struct {
	edges  []float64 // bin edges, len = len(values)+1, ascending
	values []float64
}

// NewSnrCurve creates a threshold curve from bin edges and per-bin values.
// len(edges) must equal len(values)+1; edges must be ascending. The slices
// are used as-is, not copied.
func NewSnrCurve(edges, values []float64) *SnrCurve {
	return &SnrCurve{edges: edges, values: values}
}

// NewFlatSnrCurve creates a single-bin curve applying one threshold over
// [frequencyMin, frequencyMax).
func NewFlatSnrCurve(frequencyMin, frequencyMax, threshold float64) *SnrCurve {
	return &SnrCurve{
		edges:  []float64{frequencyMin, frequencyMax},
		values: []float64{threshold},
	}
}

// Threshold returns the threshold at frequency f. ok is false outside the
// curve domain.
func (c *SnrCurve) Threshold(f float64) (threshold float64, ok bool) {
	if len(c.values) == 0 || f < c.edges[0] || f >= c.edges[len(c.edges)-1] {
		return 0, false
	}
	i := sort.Search(len(c.edges), func(k int) bool {
		return c.edges[k] > f
	}) - 1
	return c.values[i], true
}

// Selects reports whether a tile at frequency f with the given SNR passes
// the curve: out-of-domain frequencies never pass, negative thresholds
// always pass.
func (c *SnrCurve) Selects(f, snr float64) bool {
	thr, ok := c.Threshold(f)
	if !ok {
		return false
	}
	if thr < 0 {
		return true
	}
	return snr > thr
}
