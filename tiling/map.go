package tiling

import (
	"math"
	"sort"

	"github.com/strainlab/qscan/logging"
)

// Map is a multi-resolution time-frequency map for the Q-transform.
// The frequency axis is binned logarithmically; each frequency band is
// binned linearly in time, and the number of time bins in a band is a
// power-of-two divisor of the full-resolution bin count. The map time axis
// is centered on 0, spanning [-T/2, +T/2].
//
// The construction parameters must satisfy some conditions for the
// Q-transform to be valid, or they are silently adjusted:
//   - the time range T is an even number of seconds, at least 4;
//   - the minimum frequency is larger than 4Q/(2π·T);
//   - the maximum frequency is smaller than (fs/2)/(1+sqrt(11)/Q).
//
// Re-query the effective bounds with the accessors after construction.
type Map struct {
	q               float64
	sampleFrequency int
	timeRange       int
	bands           []float64 // band edges, len = bandN+1
	nt              int       // full-resolution time bin count (power of two)
	bandMultiple    []int     // time bins folded into one tile, per band
	nTiles          uint64
	content         []float64 // fine-resolution storage, bandN * nt
}

// NewMap builds an empty time-frequency map for the given Q factor,
// sampling frequency [Hz], frequency range [Hz], time range [s] and maximum
// tile mismatch.
func NewMap(q float64, sampleFrequency int, frequencyMin, frequencyMax float64,
	timeRange int, maximumMismatch float64) *Map {

	m := &Map{}

	// Parameter adjustments. Construction never fails.
	if q < math.Sqrt(11.0) {
		q = math.Sqrt(11.0)
	}
	if timeRange < 4 {
		timeRange = 4
	}
	if timeRange%2 != 0 {
		timeRange++
	}
	if sampleFrequency < 2 {
		sampleFrequency = 2
	}
	if maximumMismatch <= 0.0 || maximumMismatch > 0.5 {
		maximumMismatch = 0.2
	}
	m.q = q
	m.sampleFrequency = sampleFrequency
	m.timeRange = timeRange

	// Frequency bounds valid for this Q.
	fMinLimit := 4.0 * q / (2.0 * math.Pi * float64(timeRange))
	fMaxLimit := float64(sampleFrequency) / 2.0 / (1.0 + math.Sqrt(11.0)/q)
	fMin := math.Max(frequencyMin, fMinLimit)
	fMax := frequencyMax
	if fMax <= 0.0 || fMax > fMaxLimit {
		fMax = fMaxLimit
	}
	if fMax <= fMin {
		// The requested range is incompatible with this Q: fall back to
		// the full valid range.
		fMin = fMinLimit
		fMax = fMaxLimit
	}

	// Log-spaced frequency bands bounded by the band-to-band mismatch.
	mismatchStep := 2.0 * math.Sqrt(maximumMismatch/3.0)
	frequencyCumulativeMismatch := math.Log(fMax/fMin) * math.Sqrt(2.0+q*q) / 2.0
	bandN := int(math.Ceil(frequencyCumulativeMismatch / mismatchStep))
	if bandN < 1 {
		bandN = 1
	}
	m.bands = make([]float64, bandN+1)
	for k := 0; k <= bandN; k++ {
		m.bands[k] = fMin * math.Pow(fMax/fMin, float64(k)/float64(bandN))
	}

	// Full time resolution, set by the highest band.
	topCenter := math.Sqrt(m.bands[bandN-1] * m.bands[bandN])
	timeCumulativeMismatch := float64(timeRange) * 2.0 * math.Pi * topCenter / q
	m.nt = nextPowerOfTwo(timeCumulativeMismatch / mismatchStep)

	// Per-band time resolution and tile count.
	m.bandMultiple = make([]int, bandN)
	m.nTiles = 0
	for b := 0; b < bandN; b++ {
		timeCumulativeMismatch = float64(timeRange) * 2.0 * math.Pi * m.BandFrequency(b) / q
		nt := nextPowerOfTwo(timeCumulativeMismatch / mismatchStep)
		if nt > m.nt {
			nt = m.nt
		}
		m.bandMultiple[b] = m.nt / nt
		m.nTiles += uint64(nt)
	}

	m.content = make([]float64, bandN*m.nt)

	logging.Debug("tiling: map created", logging.Fields{
		"q":       m.q,
		"f_min":   fMin,
		"f_max":   fMax,
		"bands":   bandN,
		"t_bins":  m.nt,
		"tiles":   m.nTiles,
		"t_range": timeRange,
	})
	return m
}

// nextPowerOfTwo returns the smallest power of two >= x, at least 1.
func nextPowerOfTwo(x float64) int {
	n := 1
	for float64(n) < x {
		n *= 2
	}
	return n
}

// Q returns the Q factor.
func (m *Map) Q() float64 { return m.q }

// SampleFrequency returns the sampling frequency [Hz].
func (m *Map) SampleFrequency() int { return m.sampleFrequency }

// TimeRange returns the map time range [s].
func (m *Map) TimeRange() int { return m.timeRange }

// TimeMin returns the map time minimum [s].
func (m *Map) TimeMin() float64 { return -float64(m.timeRange) / 2.0 }

// TimeMax returns the map time maximum [s].
func (m *Map) TimeMax() float64 { return float64(m.timeRange) / 2.0 }

// FrequencyMin returns the map frequency minimum [Hz].
func (m *Map) FrequencyMin() float64 { return m.bands[0] }

// FrequencyMax returns the map frequency maximum [Hz].
func (m *Map) FrequencyMax() float64 { return m.bands[len(m.bands)-1] }

// BandN returns the number of frequency bands.
func (m *Map) BandN() int { return len(m.bands) - 1 }

// TileN returns the number of tiles in the map.
func (m *Map) TileN() uint64 { return m.nTiles }

// TileNPadded returns the number of tiles in the map when a padding [s] is
// excluded on both sides of the time range. The padding value is not
// checked against the time range.
func (m *Map) TileNPadded(padding float64) uint64 {
	frac := 1.0 - 2.0*padding/float64(m.timeRange)
	var n uint64
	for b := 0; b < m.BandN(); b++ {
		n += uint64(float64(m.BandTileN(b)) * frac)
	}
	return n
}

// Bands returns a copy of the band edges, of size BandN()+1.
func (m *Map) Bands() []float64 {
	out := make([]float64, len(m.bands))
	copy(out, m.bands)
	return out
}

// BandIndex returns the band index for a given frequency [Hz]. It returns
// -1 below the first band and BandN() at or above the last band edge.
func (m *Map) BandIndex(frequency float64) int {
	if frequency < m.bands[0] {
		return -1
	}
	if frequency >= m.bands[len(m.bands)-1] {
		return m.BandN()
	}
	return sort.Search(len(m.bands), func(i int) bool {
		return m.bands[i] > frequency
	}) - 1
}

// BandFrequency returns the central frequency of a band [Hz], the
// logarithmic middle of its edges.
func (m *Map) BandFrequency(band int) float64 {
	return math.Sqrt(m.bands[band] * m.bands[band+1])
}

// BandStart returns the band frequency start [Hz].
func (m *Map) BandStart(band int) float64 { return m.bands[band] }

// BandEnd returns the band frequency end [Hz].
func (m *Map) BandEnd(band int) float64 { return m.bands[band+1] }

// BandWidth returns the band width [Hz].
func (m *Map) BandWidth(band int) float64 { return m.bands[band+1] - m.bands[band] }

// TileDuration returns the tile duration in a band [s].
func (m *Map) TileDuration(band int) float64 {
	return float64(m.timeRange) / float64(m.nt) * float64(m.bandMultiple[band])
}

// BandTileN returns the number of tiles in a band.
func (m *Map) BandTileN(band int) int { return m.nt / m.bandMultiple[band] }

// BandMultiple returns the number of full-resolution time bins folded into
// one tile of a band. Always a power of two.
func (m *Map) BandMultiple(band int) int { return m.bandMultiple[band] }

// TileTimeStart returns the start time of a tile [s].
func (m *Map) TileTimeStart(tile, band int) float64 {
	return m.TimeMin() + float64(tile)*m.TileDuration(band)
}

// TileTimeEnd returns the end time of a tile [s].
func (m *Map) TileTimeEnd(tile, band int) float64 {
	return m.TimeMin() + float64(tile+1)*m.TileDuration(band)
}

// TileTime returns the central time of a tile [s].
func (m *Map) TileTime(tile, band int) float64 {
	return m.TileTimeStart(tile, band)/2.0 + m.TileTimeEnd(tile, band)/2.0
}

// TimeTileIndex returns the index of the tile covering a given time in a
// band. The returned index may be out of range.
func (m *Map) TimeTileIndex(band int, t float64) int {
	return int(math.Floor((t - m.TimeMin()) / m.TileDuration(band)))
}

// TileContent returns the content of a tile. Indices must be valid.
func (m *Map) TileContent(tile, band int) float64 {
	return m.content[band*m.nt+tile*m.bandMultiple[band]]
}

// SetTileContent sets the content of a tile, expanding it over the
// underlying fine-resolution storage. Indices must be valid.
func (m *Map) SetTileContent(tile, band int, value float64) {
	start := band*m.nt + tile*m.bandMultiple[band]
	for i := start; i < start+m.bandMultiple[band]; i++ {
		m.content[i] = value
	}
}
