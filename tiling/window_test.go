package tiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBisquareGeometry(t *testing.T) {
	w := NewBisquare(64.0, 8.0, 4)

	assert.InDelta(t, 64.0*math.Sqrt(11.0)/8.0, w.HalfWidth(), 1e-12)
	assert.Equal(t, 256, w.CenterBin())
	assert.Equal(t, 2*int(math.Floor(w.HalfWidth()*4.0))+1, w.Size())
	assert.Equal(t, 1, w.Size()%2)
}

func TestBisquareUnitEnergy(t *testing.T) {
	for _, q := range []float64{4.0, 8.0, 32.0} {
		w := NewBisquare(100.0, q, 8)
		var energy float64
		for i := 0; i < w.Size(); i++ {
			energy += w.Energy(i)
		}
		assert.InDelta(t, 1.0, energy, 1e-9, "q=%g", q)
	}
}

func TestBisquareProfile(t *testing.T) {
	w := NewBisquare(100.0, 8.0, 8)
	half := w.Size() / 2

	// Symmetric, peaked at the center, vanishing at the edges.
	center := real(w.Coefficient(half))
	require.Greater(t, center, 0.0)
	for i := 0; i <= half; i++ {
		assert.InDelta(t, real(w.Coefficient(i)), real(w.Coefficient(w.Size()-1-i)), 1e-12)
		assert.LessOrEqual(t, real(w.Coefficient(i)), center)
		assert.Zero(t, imag(w.Coefficient(i)))
	}
	assert.Less(t, real(w.Coefficient(0)), 0.01*center)
}
