package tiling

import (
	"fmt"
	"math"

	"github.com/strainlab/qscan/logging"
	"github.com/strainlab/qscan/segments"
	"github.com/strainlab/qscan/sequence"
	"github.com/strainlab/qscan/spectrum"
	"github.com/strainlab/qscan/triggers"
)

// Tiling is the top-level Q-transform analysis structure: a set of QPlane
// objects covering a Q range, driven chunk by chunk by a sequence.Sequencer.
// The chunk duration of the sequencer sets the time range of every plane.
//
// The intended call sequence per chunk is NewChunk (on the sequencer),
// ProjectData, then any of SaveTriggers, FillMaps or GetTileSegments.
type Tiling struct {
	seq             *sequence.Sequencer
	planes          []*QPlane
	maximumMismatch float64

	mapFill     string
	plotWindows []float64
	fullMaps    []*FullMap
	fullMapNt   int
}

// NewTiling builds the tiling: the Q range [qMin, qMax] is covered by
// log-spaced Q planes (see ComputeQs), each tiled over the frequency range
// [frequencyMin, frequencyMax] clamped to the validity bounds of its Q.
// timeRange and overlap configure the chunk sequencer, in seconds.
func NewTiling(qMin, qMax, frequencyMin, frequencyMax float64,
	sampleFrequency, timeRange, overlap int, maximumMismatch float64) *Tiling {

	if maximumMismatch <= 0.0 || maximumMismatch > 0.5 {
		maximumMismatch = 0.2
	}

	t := &Tiling{
		seq:             sequence.New(timeRange, overlap),
		maximumMismatch: maximumMismatch,
		mapFill:         ContentSnr,
		fullMapNt:       512,
	}

	qs := ComputeQs(qMin, qMax, maximumMismatch)
	t.planes = make([]*QPlane, len(qs))
	for i, q := range qs {
		t.planes[i] = NewQPlane(q, sampleFrequency, frequencyMin, frequencyMax,
			t.seq.TimeRange(), maximumMismatch)
	}

	logging.Info("tiling: structure created", logging.Fields{
		"q_planes": len(qs),
		"q_min":    qs[0],
		"q_max":    qs[len(qs)-1],
		"f_min":    t.FrequencyMin(),
		"f_max":    t.FrequencyMax(),
		"tiles":    t.TileN(0),
	})
	return t
}

// Sequencer returns the chunk sequencer driving the analysis.
func (t *Tiling) Sequencer() *sequence.Sequencer { return t.seq }

// QN returns the number of Q planes.
func (t *Tiling) QN() int { return len(t.planes) }

// Q returns the Q value of a plane.
func (t *Tiling) Q(plane int) float64 { return t.planes[plane].Q() }

// Plane returns a Q plane.
func (t *Tiling) Plane(plane int) *QPlane { return t.planes[plane] }

// TimeRange returns the chunk duration [s].
func (t *Tiling) TimeRange() int { return t.seq.TimeRange() }

// MismatchMax returns the maximum tile mismatch.
func (t *Tiling) MismatchMax() float64 { return t.maximumMismatch }

// FrequencyMin returns the smallest frequency tiled by any plane [Hz].
func (t *Tiling) FrequencyMin() float64 {
	fMin := math.Inf(1)
	for _, p := range t.planes {
		fMin = math.Min(fMin, p.FrequencyMin())
	}
	return fMin
}

// FrequencyMax returns the largest frequency tiled by any plane [Hz].
func (t *Tiling) FrequencyMax() float64 {
	fMax := math.Inf(-1)
	for _, p := range t.planes {
		fMax = math.Max(fMax, p.FrequencyMax())
	}
	return fMax
}

// TileN returns the total number of tiles when a padding [s] is excluded on
// both sides of the chunk.
func (t *Tiling) TileN(padding float64) uint64 {
	var n uint64
	for _, p := range t.planes {
		if padding > 0.0 {
			n += p.TileNPadded(padding)
		} else {
			n += p.TileN()
		}
	}
	return n
}

// TileSnrSq returns the SNR squared of one tile of one plane, as estimated
// by the last projection.
func (t *Tiling) TileSnrSq(plane, tile, band int) float64 {
	return t.planes[plane].TileSnrSq(tile, band)
}

// SnrSqMax returns the maximum SNR squared seen by any plane in the last
// projection.
func (t *Tiling) SnrSqMax() float64 {
	var maxSq float64
	for _, p := range t.planes {
		if p.SnrSqMax() > maxSq {
			maxSq = p.SnrSqMax()
		}
	}
	return maxSq
}

// SetSnrThresholds sets the tile SNR threshold of every plane.
func (t *Tiling) SetSnrThresholds(snrThr float64) {
	for _, p := range t.planes {
		p.SetSnrThreshold(snrThr)
	}
}

// SetMapFill selects the tile content written by FillMaps: ContentSnr,
// ContentAmplitude or ContentPhase.
func (t *Tiling) SetMapFill(contentType string) { t.mapFill = contentType }

// SetPlotTimeWindows sets the zoom windows [s] for which FillMaps builds a
// cross-Q full map, and the time resolution of those maps.
func (t *Tiling) SetPlotTimeWindows(windows []float64, timeBins int) {
	t.plotWindows = windows
	if timeBins > 0 {
		t.fullMapNt = timeBins
	}
	t.fullMaps = nil
}

// ProjectData projects the whitened chunk spectrum onto every plane. It
// returns the total number of tiles above threshold, excluding half the
// nominal chunk overlap on both sides.
func (t *Tiling) ProjectData(dataFFT []complex128) uint64 {
	padding := float64(t.seq.OverlapDuration()) / 2.0
	var above uint64
	for _, p := range t.planes {
		above += p.ProjectData(dataFFT, padding)
	}
	logging.Debug("tiling: chunk projected", logging.Fields{
		"chunk_center": t.seq.ChunkTimeCenter(),
		"tiles_above":  above,
		"snr_max":      math.Sqrt(math.Max(t.SnrSqMax(), 0.0)),
	})
	return above
}

// SetPower sets the noise amplitude of every plane band from the two noise
// power spectra used to whiten the chunk.
func (t *Tiling) SetPower(spec1, spec2 *spectrum.Spectrum) {
	for _, p := range t.planes {
		p.SetPower(spec1, spec2)
	}
}

// SaveTriggers writes the above-threshold tiles of the current chunk to the
// sink. Tiles are restricted to the new part of the chunk (see
// sequence.Sequencer.GetChunkOut), which is also recorded in the sink as
// processed coverage. A chunk with no new part is a no-op.
func (t *Tiling) SaveTriggers(sink triggers.Sink) error {
	sel := t.seq.GetChunkOut()
	if sel == nil {
		return nil
	}
	t0 := float64(t.seq.ChunkTimeCenter())

	for _, p := range t.planes {
		if err := p.SaveTriggers(sink, t0, sel); err != nil {
			return fmt.Errorf("plane Q=%.1f: %w", p.Q(), err)
		}
	}
	for i := 0; i < sel.N(); i++ {
		if err := sink.AddProcessedSegment(sel.Start(i), sel.End(i)); err != nil {
			return fmt.Errorf("record coverage: %w", err)
		}
	}
	return nil
}

// GetTileSegments returns the union, over all planes, of the time spans of
// tiles passing the threshold curve, in absolute time. Tiles within padding
// seconds of the chunk edges are excluded.
func (t *Tiling) GetTileSegments(snrThreshold *SnrCurve, padding float64) *segments.List {
	segs := segments.New()
	t0 := float64(t.seq.ChunkTimeCenter())
	for _, p := range t.planes {
		p.AddTileSegments(segs, snrThreshold, t0, padding)
	}
	return segs
}

// FillMaps fills the map of every plane with the last projection, plus one
// cross-Q full map per plot time window. The windows are centered on the
// chunk center. With no plot windows configured, the full chunk is mapped
// and no full map is built.
func (t *Tiling) FillMaps() {
	if len(t.plotWindows) == 0 {
		for _, p := range t.planes {
			p.FillMap(t.mapFill, p.TimeMin(), p.TimeMax())
		}
		return
	}

	// The widest window bounds the per-plane fill.
	widest := 0.0
	for _, w := range t.plotWindows {
		widest = math.Max(widest, w)
	}
	for _, p := range t.planes {
		p.FillMap(t.mapFill, -widest/2.0, widest/2.0)
	}

	for i := range t.plotWindows {
		t.FillFullMap(i, float64(t.seq.ChunkTimeCenter()))
	}
}

// FillFullMap builds the cross-Q full map for one configured plot window
// from the last projection, stamped with the absolute chunk center
// timeOffset. The window index must be valid.
func (t *Tiling) FillFullMap(window int, timeOffset float64) *FullMap {
	if t.fullMaps == nil {
		t.fullMaps = make([]*FullMap, len(t.plotWindows))
	}
	fm := NewFullMap(t.FrequencyMin(), t.FrequencyMax(), t.plotWindows[window], t.fullMapNt)
	fm.Fill(t.planes, timeOffset)
	t.fullMaps[window] = fm
	return fm
}

// FullMapN returns the number of full maps built by the last FillMaps call.
func (t *Tiling) FullMapN() int { return len(t.fullMaps) }

// FullMap returns one of the full maps built by the last FillMaps call.
func (t *Tiling) FullMap(window int) *FullMap { return t.fullMaps[window] }
