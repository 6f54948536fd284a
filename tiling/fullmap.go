package tiling

import (
	"math"
)

// FullMap is a cross-Q view of the tiling: a regular grid, log-spaced in
// frequency and linear in time, where each cell holds the loudest SNR of
// any plane tile covering that point. It is a display structure; detection
// always works on the per-plane tiles.
type FullMap struct {
	fMin, fMax float64
	window     float64 // time span [s], centered on the chunk center
	center     float64 // absolute chunk center [s]
	nf, nt     int
	content    []float64 // nf * nt, frequency-major
}

// NewFullMap allocates an empty full map over [frequencyMin, frequencyMax]
// [Hz] and a time window [s]. timeBins sets the time resolution; the
// frequency resolution follows so cells stay roughly square on a log-log
// display.
func NewFullMap(frequencyMin, frequencyMax, window float64, timeBins int) *FullMap {
	if timeBins < 2 {
		timeBins = 2
	}
	nf := timeBins / 2
	if nf < 2 {
		nf = 2
	}
	return &FullMap{
		fMin:    frequencyMin,
		fMax:    frequencyMax,
		window:  window,
		nf:      nf,
		nt:      timeBins,
		content: make([]float64, nf*timeBins),
	}
}

// FrequencyMin returns the map frequency minimum [Hz].
func (m *FullMap) FrequencyMin() float64 { return m.fMin }

// FrequencyMax returns the map frequency maximum [Hz].
func (m *FullMap) FrequencyMax() float64 { return m.fMax }

// Window returns the map time span [s].
func (m *FullMap) Window() float64 { return m.window }

// TimeCenter returns the absolute time the map is centered on [s].
func (m *FullMap) TimeCenter() float64 { return m.center }

// FrequencyBinN returns the number of frequency bins.
func (m *FullMap) FrequencyBinN() int { return m.nf }

// TimeBinN returns the number of time bins.
func (m *FullMap) TimeBinN() int { return m.nt }

// BinFrequency returns the central frequency of a frequency bin [Hz].
func (m *FullMap) BinFrequency(fbin int) float64 {
	return m.fMin * math.Pow(m.fMax/m.fMin, (float64(fbin)+0.5)/float64(m.nf))
}

// BinTime returns the central time of a time bin, relative to the chunk
// center [s].
func (m *FullMap) BinTime(tbin int) float64 {
	return -m.window/2.0 + (float64(tbin)+0.5)*m.window/float64(m.nt)
}

// Content returns the SNR stored in a cell. Indices must be valid.
func (m *FullMap) Content(tbin, fbin int) float64 {
	return m.content[fbin*m.nt+tbin]
}

// Fill scans the planes and stores, in every cell, the loudest SNR of the
// tiles covering the cell center. timeCenter is the absolute chunk center
// used to report TimeCenter.
func (m *FullMap) Fill(planes []*QPlane, timeCenter float64) {
	m.center = timeCenter

	for fbin := 0; fbin < m.nf; fbin++ {
		f := m.BinFrequency(fbin)
		for tbin := 0; tbin < m.nt; tbin++ {
			tc := m.BinTime(tbin)

			best := 0.0
			for _, p := range planes {
				b := p.BandIndex(f)
				if b < 0 || b >= p.BandN() {
					continue
				}
				ti := p.TimeTileIndex(b, tc)
				if ti < 0 || ti >= p.BandTileN(b) {
					continue
				}
				best = math.Max(best, p.TileSnrSq(ti, b))
			}
			m.content[fbin*m.nt+tbin] = math.Sqrt(best)
		}
	}
}
