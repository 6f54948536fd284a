package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardSingleTone(t *testing.T) {
	f := NewFFT()

	// One cycle of a cosine: all energy in bins 1 and n-1.
	n := 64
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2.0 * math.Pi * float64(i) / float64(n))
	}
	spec := f.Forward(x)
	require.Len(t, spec, n)
	assert.InDelta(t, float64(n)/2.0, cmplx.Abs(spec[1]), 1e-9)
	assert.InDelta(t, 0.0, cmplx.Abs(spec[2]), 1e-9)
}

func TestInverseRoundTrip(t *testing.T) {
	f := NewFFT()

	x := []complex128{1, 2i, -3, 4 + 1i, 0, -2i, 5, 1}
	back := f.Inverse(f.ForwardComplex(x))
	require.Len(t, back, len(x))
	for i := range x {
		assert.InDelta(t, real(x[i]), real(back[i]), 1e-9, "bin %d", i)
		assert.InDelta(t, imag(x[i]), imag(back[i]), 1e-9, "bin %d", i)
	}
}

func TestInverseUnscaled(t *testing.T) {
	f := NewFFT()

	x := []complex128{1, 2, 3, 4}
	scaled := f.Inverse(x)
	unscaled := f.InverseUnscaled(x)
	require.Len(t, unscaled, len(x))
	for i := range x {
		assert.InDelta(t, 4.0*real(scaled[i]), real(unscaled[i]), 1e-9)
		assert.InDelta(t, 4.0*imag(scaled[i]), imag(unscaled[i]), 1e-9)
	}
}

func TestEmptyInput(t *testing.T) {
	f := NewFFT()
	assert.Empty(t, f.Forward(nil))
	assert.Empty(t, f.ForwardComplex(nil))
	assert.Empty(t, f.Inverse(nil))
	assert.Empty(t, f.InverseUnscaled(nil))
}
