package spectrum

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Spectrum holds a one-sided noise power spectrum sampled at a fixed
// frequency resolution, power[k] being the value at frequency k*df.
// It is the type the tiling engine consumes through SetPower; producing it
// (PSD estimation) belongs to the surrounding pipeline.
type Spectrum struct {
	df    float64
	power []float64
}

// New creates a spectrum from a power array at resolution df [Hz].
// The array is used as-is, not copied.
func New(df float64, power []float64) *Spectrum {
	return &Spectrum{df: df, power: power}
}

// NewFlat creates a spectrum of n bins at resolution df with a constant
// power value. Mostly useful for tests and synthetic pipelines.
func NewFlat(df float64, n int, value float64) *Spectrum {
	power := make([]float64, n)
	for i := range power {
		power[i] = value
	}
	return &Spectrum{df: df, power: power}
}

// Resolution returns the frequency resolution [Hz].
func (s *Spectrum) Resolution() float64 { return s.df }

// N returns the number of frequency bins.
func (s *Spectrum) N() int { return len(s.power) }

// FrequencyMax returns the highest sampled frequency [Hz].
func (s *Spectrum) FrequencyMax() float64 {
	if len(s.power) == 0 {
		return 0
	}
	return float64(len(s.power)-1) * s.df
}

// Power returns the noise power at frequency f [Hz], linearly interpolated
// between bins and clamped to the sampled range.
func (s *Spectrum) Power(f float64) float64 {
	if len(s.power) == 0 {
		return 0
	}
	x := f / s.df
	if x <= 0 {
		return s.power[0]
	}
	k := int(math.Floor(x))
	if k >= len(s.power)-1 {
		return s.power[len(s.power)-1]
	}
	frac := x - float64(k)
	return s.power[k]*(1.0-frac) + s.power[k+1]*frac
}

// Scale multiplies the whole spectrum by a constant factor in place.
func (s *Spectrum) Scale(factor float64) {
	floats.Scale(factor, s.power)
}

// Median returns the median power over [fmin, fmax]. It returns 0 if the
// band contains no bins.
func (s *Spectrum) Median(fmin, fmax float64) float64 {
	kmin := int(math.Ceil(fmin / s.df))
	kmax := int(math.Floor(fmax / s.df))
	if kmin < 0 {
		kmin = 0
	}
	if kmax > len(s.power)-1 {
		kmax = len(s.power) - 1
	}
	if kmax < kmin {
		return 0
	}
	band := make([]float64, kmax-kmin+1)
	copy(band, s.power[kmin:kmax+1])
	sort.Float64s(band)
	return stat.Quantile(0.5, stat.Empirical, band, nil)
}
