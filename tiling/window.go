package tiling

import (
	"math"
)

// Bisquare is the compact-support frequency-domain window applied to a
// band before the inverse transform. Coefficients are stored complex so
// the projection is a plain complex multiply; the bisquare profile itself
// is real, which keeps tile phases referenced to the band carrier.
type Bisquare struct {
	size      int
	centerBin int     // band center position in the chunk spectrum
	halfWidth float64 // window half width [Hz]
	coeff     []complex128
}

// NewBisquare creates the window for a band of central frequency [Hz] on a
// plane of the given Q, for a chunk of timeRange seconds. The half width is
// frequency*sqrt(11)/Q and the support covers 2*floor(halfWidth*T)+1
// frequency bins at resolution 1/T.
func NewBisquare(frequency, q float64, timeRange int) *Bisquare {
	t := float64(timeRange)
	w := &Bisquare{
		halfWidth: frequency * math.Sqrt(11.0) / q,
		centerBin: int(math.Round(frequency * t)),
	}
	w.size = 2*int(math.Floor(w.halfWidth*t)) + 1
	w.generate(t)
	return w
}

// generate computes the window coefficients, normalized to unit energy so
// the transform preserves the noise expectation of tile energies.
func (w *Bisquare) generate(t float64) {
	w.coeff = make([]complex128, w.size)

	half := w.size / 2
	var norm float64
	for i := 0; i < w.size; i++ {
		x := float64(i-half) / t / w.halfWidth
		v := (1.0 - x*x) * (1.0 - x*x)
		w.coeff[i] = complex(v, 0)
		norm += v * v
	}
	s := complex(1.0/math.Sqrt(norm), 0)

	for i := 0; i < w.size; i++ {
		w.coeff[i] *= s
	}
}

// Size returns the number of window coefficients.
func (w *Bisquare) Size() int { return w.size }

// HalfWidth returns the window half width [Hz].
func (w *Bisquare) HalfWidth() float64 { return w.halfWidth }

// CenterBin returns the spectrum bin of the band center at resolution 1/T.
func (w *Bisquare) CenterBin() int { return w.centerBin }

// Coefficient returns the i-th coefficient.
func (w *Bisquare) Coefficient(i int) complex128 {
	return w.coeff[i]
}

// Energy returns the squared magnitude of the i-th coefficient.
func (w *Bisquare) Energy(i int) float64 {
	re, im := real(w.coeff[i]), imag(w.coeff[i])
	return re*re + im*im
}
