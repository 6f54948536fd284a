package tiling

import (
	"math"
	"math/cmplx"

	"github.com/strainlab/qscan/dsp"
	"github.com/strainlab/qscan/segments"
	"github.com/strainlab/qscan/spectrum"
	"github.com/strainlab/qscan/triggers"
)

// Map content keywords understood by FillMap. Any other keyword fills a
// demo tiling pattern instead.
const (
	ContentSnr       = "snr"
	ContentAmplitude = "amplitude"
	ContentPhase     = "phase"
)

// QPlane is a time-frequency plane at one fixed Q value. On top of the Map
// geometry it owns, per band, a bisquare window and the inverse-transform
// machinery of the Q-transform: ProjectData turns a whitened chunk spectrum
// into per-tile SNR statistics, which FillMap, AddTileSegments and
// SaveTriggers then consume.
//
// The plane is not safe for concurrent use: ProjectData rewrites the
// per-band series in place.
type QPlane struct {
	*Map

	snrThr   float64
	snrSqMax float64

	bandWindow         []*Bisquare
	bandNoiseAmplitude []float64
	bandSeries         [][]complex128 // last projection, one value per tile
	fft                *dsp.FFT
}

// NewQPlane builds the plane geometry (see NewMap for the parameter
// adjustments) plus one bisquare window and one inverse-transform buffer
// per frequency band.
func NewQPlane(q float64, sampleFrequency int, frequencyMin, frequencyMax float64,
	timeRange int, maximumMismatch float64) *QPlane {

	p := &QPlane{
		Map:    NewMap(q, sampleFrequency, frequencyMin, frequencyMax, timeRange, maximumMismatch),
		snrThr: 2.0,
		fft:    dsp.NewFFT(),
	}

	n := p.BandN()
	p.bandWindow = make([]*Bisquare, n)
	p.bandNoiseAmplitude = make([]float64, n)
	p.bandSeries = make([][]complex128, n)
	for b := 0; b < n; b++ {
		p.bandWindow[b] = NewBisquare(p.BandFrequency(b), p.Q(), p.TimeRange())
		p.bandSeries[b] = make([]complex128, p.BandTileN(b))
	}
	return p
}

// SnrThreshold returns the tile SNR threshold.
func (p *QPlane) SnrThreshold() float64 { return p.snrThr }

// SetSnrThreshold sets the tile SNR threshold used by ProjectData counting
// and SaveTriggers.
func (p *QPlane) SetSnrThreshold(snrThr float64) { p.snrThr = snrThr }

// SnrSqMax returns the maximum SNR squared seen in the last projection.
func (p *QPlane) SnrSqMax() float64 { return p.snrSqMax }

// ProjectData projects a whitened chunk spectrum onto the plane: for every
// band, a slice of the spectrum centered on the band frequency is weighted
// by the band bisquare window and inverse-transformed, one output value per
// tile. Under pure noise the squared magnitudes are chi-square distributed
// with mean 2, so the tile SNR squared is max(|value|²-2, 0).
//
// dataFFT is the forward transform of the whitened chunk at the working
// sample rate: only the positive-frequency bins below Nyquist are read, at
// resolution 1/T. The spectrum size is not validated (caller contract).
//
// The return value is the number of tiles above the SNR threshold, with
// tiles within padding seconds of either edge excluded from the count.
func (p *QPlane) ProjectData(dataFFT []complex128, padding float64) uint64 {
	p.snrSqMax = 0.0
	var above uint64

	nyquist := p.SampleFrequency() * p.TimeRange() / 2
	tMin := p.TimeMin() + padding
	tMax := p.TimeMax() - padding
	thrSq := p.snrThr * p.snrThr

	for b := 0; b < p.BandN(); b++ {
		win := p.bandWindow[b]
		nt := p.BandTileN(b)
		half := win.Size() / 2

		// Windowed band slice, folded into the tile-rate buffer. The
		// band center maps to frequency zero of the small transform.
		buf := make([]complex128, nt)
		for i := 0; i < win.Size(); i++ {
			k := win.CenterBin() + i - half
			if k <= 0 || k >= nyquist || k >= len(dataFFT) {
				continue
			}
			j := ((i-half)%nt + nt) % nt
			buf[j] += dataFFT[k] * win.Coefficient(i)
		}

		series := p.fft.InverseUnscaled(buf)
		p.bandSeries[b] = series

		for t := 0; t < nt; t++ {
			v := series[t]
			snrSq := real(v)*real(v) + imag(v)*imag(v) - 2.0
			if snrSq > p.snrSqMax {
				p.snrSqMax = snrSq
			}
			if snrSq > thrSq {
				tc := p.TileTime(t, b)
				if tc >= tMin && tc < tMax {
					above++
				}
			}
		}
	}
	return above
}

// TileSnrSq returns the SNR squared estimated in a tile by the last
// projection. Indices must be valid and ProjectData must have been called.
func (p *QPlane) TileSnrSq(tile, band int) float64 {
	v := p.bandSeries[band][tile]
	return math.Max(real(v)*real(v)+imag(v)*imag(v)-2.0, 0.0)
}

// TilePhase returns the phase estimated in a tile [rad].
func (p *QPlane) TilePhase(tile, band int) float64 {
	return cmplx.Phase(p.bandSeries[band][tile])
}

// TileAmplitudeSq returns the amplitude squared estimated in a tile.
// Meaningful only after SetPower was called with the noise spectra of the
// current chunk.
func (p *QPlane) TileAmplitudeSq(tile, band int) float64 {
	return p.TileSnrSq(tile, band) * p.bandNoiseAmplitude[band] * p.bandNoiseAmplitude[band]
}

// TileAmplitude returns the amplitude estimated in a tile. Meaningful only
// after SetPower was called with the noise spectra of the current chunk.
func (p *QPlane) TileAmplitude(tile, band int) float64 {
	return math.Sqrt(p.TileSnrSq(tile, band)) * p.bandNoiseAmplitude[band]
}

// SetPower computes the noise amplitude of each band by integrating the
// geometric mean of the two noise power spectra, weighted by the band
// window. The spectra must be the ones used to whiten the data; supplying
// both cancels the double-whitening bias.
func (p *QPlane) SetPower(spec1, spec2 *spectrum.Spectrum) {
	t := float64(p.TimeRange())
	for b := 0; b < p.BandN(); b++ {
		win := p.bandWindow[b]
		half := win.Size() / 2

		var power, sumOfWeight float64
		for i := 0; i < win.Size(); i++ {
			f := float64(win.CenterBin()+i-half) / t
			if f <= 0.0 {
				continue
			}
			w2 := win.Energy(i)
			sumOfWeight += w2
			power += w2 * math.Sqrt(spec1.Power(f)*spec2.Power(f))
		}
		if sumOfWeight > 0.0 {
			p.bandNoiseAmplitude[b] = math.Sqrt(power / sumOfWeight)
		} else {
			p.bandNoiseAmplitude[b] = 0.0
		}
	}
}

// FillMap fills the map tiles between timeStart and timeEnd [s] with the
// last projection: SNR for "snr", amplitude for "amplitude", phase for
// "phase". Any other content type fills a demo tiling pattern.
func (p *QPlane) FillMap(contentType string, timeStart, timeEnd float64) {
	for b := 0; b < p.BandN(); b++ {
		for t := 0; t < p.BandTileN(b); t++ {
			tc := p.TileTime(t, b)
			if tc < timeStart || tc >= timeEnd {
				continue
			}
			switch contentType {
			case ContentSnr:
				p.SetTileContent(t, b, math.Sqrt(p.TileSnrSq(t, b)))
			case ContentAmplitude:
				p.SetTileContent(t, b, p.TileAmplitude(t, b))
			case ContentPhase:
				p.SetTileContent(t, b, p.TilePhase(t, b))
			default:
				// Demo tiling: checkerboard of tile boundaries.
				p.SetTileContent(t, b, float64((t+b)%2+1))
			}
		}
	}
}

// AddTileSegments adds the time span of every tile passing the threshold
// curve to the segment list, shifted to absolute time with t0 [s]. Tiles
// within padding seconds of either edge are excluded.
func (p *QPlane) AddTileSegments(segs *segments.List, snrThreshold *SnrCurve,
	t0, padding float64) {

	tMin := p.TimeMin() + padding
	tMax := p.TimeMax() - padding
	for b := 0; b < p.BandN(); b++ {
		f := p.BandFrequency(b)
		for t := 0; t < p.BandTileN(b); t++ {
			tc := p.TileTime(t, b)
			if tc < tMin || tc >= tMax {
				continue
			}
			if snrThreshold.Selects(f, math.Sqrt(p.TileSnrSq(t, b))) {
				segs.Add(t0+p.TileTimeStart(t, b), t0+p.TileTimeEnd(t, b))
			}
		}
	}
}

// SaveTriggers appends every tile above the SNR threshold to the sink,
// shifted to absolute time with t0 [s]. Only tiles whose shifted central
// time falls inside the selection segments are saved.
func (p *QPlane) SaveTriggers(sink triggers.Sink, t0 float64, selection *segments.List) error {
	thrSq := p.snrThr * p.snrThr
	for b := 0; b < p.BandN(); b++ {
		for t := 0; t < p.BandTileN(b); t++ {
			snrSq := p.TileSnrSq(t, b)
			if snrSq <= thrSq {
				continue
			}
			tc := t0 + p.TileTime(t, b)
			if selection != nil && !selection.Contains(tc) {
				continue
			}
			err := sink.Append(triggers.Trigger{
				Time:           tc,
				TimeStart:      t0 + p.TileTimeStart(t, b),
				TimeEnd:        t0 + p.TileTimeEnd(t, b),
				Frequency:      p.BandFrequency(b),
				FrequencyStart: p.BandStart(b),
				FrequencyEnd:   p.BandEnd(b),
				Q:              p.Q(),
				SNR:            math.Sqrt(snrSq),
				Amplitude:      p.TileAmplitude(t, b),
				Phase:          p.TilePhase(t, b),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
