package dsp

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides the Fourier transform capability used by the tiling engine.
// It wraps mjibson/go-dsp, which handles all sizes efficiently, including
// non-power-of-2.
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Forward computes the forward transform of a real buffer.
func (f *FFT) Forward(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ForwardComplex computes the forward transform of a complex buffer.
func (f *FFT) ForwardComplex(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFT(x)
}

// Inverse computes the inverse transform with the usual 1/N scaling.
func (f *FFT) Inverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// InverseUnscaled computes the inverse transform without the 1/N factor,
// i.e. the plain inverse DFT sum. The Q-transform normalizes its window
// kernels to unit energy, so the unscaled sum is what keeps the noise
// expectation of tile energies fixed.
func (f *FFT) InverseUnscaled(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	result := fft.IFFT(x)
	n := complex(float64(len(x)), 0)
	for i, v := range result {
		result[i] = v * n
	}

	return result
}
