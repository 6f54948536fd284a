// Command qscan runs the tiling engine over a synthetic whitened stream:
// gaussian noise with an optional sine-gaussian injection. Triggers go to a
// SQLite database and, optionally, the loudest chunk is rendered as PNG
// maps. It exercises the whole chunk pipeline end to end without any
// detector data dependency.
package main

import (
	"flag"
	"math"
	"math/rand"

	"github.com/strainlab/qscan/dsp"
	"github.com/strainlab/qscan/logging"
	"github.com/strainlab/qscan/monitor"
	"github.com/strainlab/qscan/segments"
	"github.com/strainlab/qscan/spectrum"
	"github.com/strainlab/qscan/tiling"
	"github.com/strainlab/qscan/triggers"
)

func main() {
	var (
		length    = flag.Int("length", 256, "stream length [s]")
		duration  = flag.Int("duration", 64, "chunk duration [s]")
		overlap   = flag.Int("overlap", 4, "chunk overlap [s]")
		fs        = flag.Int("fs", 1024, "sample frequency [Hz]")
		qMin      = flag.Float64("qmin", 4.0, "minimum Q")
		qMax      = flag.Float64("qmax", 64.0, "maximum Q")
		fMin      = flag.Float64("fmin", 16.0, "minimum frequency [Hz]")
		fMax      = flag.Float64("fmax", 0.0, "maximum frequency [Hz] (0 = up to the validity bound)")
		snrThr    = flag.Float64("snr", 6.0, "tile SNR threshold")
		dbPath    = flag.String("db", "qscan.db", "trigger database path")
		plotDir   = flag.String("plots", "", "plot output directory (empty = no plots)")
		seed      = flag.Int64("seed", 1, "noise generator seed")
		injTime   = flag.Float64("inject-time", 100.5, "injection time [s] (negative = no injection)")
		injFreq   = flag.Float64("inject-freq", 64.0, "injection frequency [Hz]")
		injAmp    = flag.Float64("inject-amp", 12.0, "injection peak amplitude, in noise standard deviations")
		injSigma  = flag.Float64("inject-sigma", 0.05, "injection width [s]")
		verbosity = flag.Int("v", 1, "verbosity: 0 quiet, 1 info, 2 debug")
	)
	flag.Parse()

	switch *verbosity {
	case 0:
		logging.SetLevel(logging.ErrorLevel)
	case 1:
		logging.SetLevel(logging.InfoLevel)
	default:
		logging.SetLevel(logging.DebugLevel)
	}

	cfg := tiling.DefaultConfig()
	cfg.QMin = *qMin
	cfg.QMax = *qMax
	cfg.FrequencyMin = *fMin
	cfg.FrequencyMax = *fMax
	cfg.SampleFrequency = *fs
	cfg.TimeRange = *duration
	cfg.Overlap = *overlap
	cfg.SnrThreshold = *snrThr
	if *plotDir != "" {
		cfg.PlotTimeWindows = []float64{2.0, 16.0}
	}

	til, err := tiling.NewTilingFromConfig(cfg)
	if err != nil {
		logging.Fatal(err, "invalid tiling configuration")
	}

	store, err := triggers.OpenStore(*dbPath)
	if err != nil {
		logging.Fatal(err, "cannot open trigger store", logging.Fields{"path": *dbPath})
	}
	defer store.Close()

	// Whitened stream: the noise spectrum is flat at 1.
	flat := spectrum.NewFlat(1.0/float64(til.TimeRange()), til.TimeRange()**fs/2+1, 1.0)
	til.SetPower(flat, flat)

	in := segments.NewFromSpans([2]float64{0.0, float64(*length)})
	chunkN := til.Sequencer().SetSegments(in, nil)
	logging.Info("qscan: starting", logging.Fields{
		"stream": *length,
		"chunks": chunkN,
		"db":     *dbPath,
	})

	var (
		fft       = dsp.NewFFT()
		r         = rand.New(rand.NewSource(*seed))
		n         = *fs * til.TimeRange()
		sigma     = math.Sqrt(2.0 / float64(n))
		loudest   = 0.0
		loudestT0 = 0
	)
	for {
		if _, ok := til.Sequencer().NewChunk(); !ok {
			break
		}
		start := float64(til.Sequencer().ChunkTimeStart())

		// Time-domain synthesis, scaled so every spectrum bin carries a
		// mean squared magnitude of 2 like properly whitened data.
		x := make([]float64, n)
		for i := range x {
			x[i] = sigma * r.NormFloat64()
		}
		if *injTime >= 0.0 {
			addInjection(x, *fs, start, *injTime, *injFreq, *injAmp*sigma, *injSigma)
		}

		above := til.ProjectData(fft.Forward(x))
		if err := til.SaveTriggers(store); err != nil {
			logging.Fatal(err, "cannot save triggers")
		}

		snrMax := math.Sqrt(math.Max(til.SnrSqMax(), 0.0))
		logging.Info("qscan: chunk done", logging.Fields{
			"center":      til.Sequencer().ChunkTimeCenter(),
			"tiles_above": above,
			"snr_max":     snrMax,
		})
		if snrMax > loudest {
			loudest = snrMax
			loudestT0 = til.Sequencer().ChunkTimeCenter()
			if *plotDir != "" {
				til.FillMaps()
			}
		}
	}

	count, err := store.CountTriggers()
	if err != nil {
		logging.Fatal(err, "cannot count triggers")
	}
	logging.Info("qscan: done", logging.Fields{
		"triggers":      count,
		"snr_max":       loudest,
		"loudest_chunk": loudestT0,
	})

	if *plotDir != "" && loudest > 0.0 {
		mp, err := monitor.NewMapPlotter(*plotDir)
		if err != nil {
			logging.Fatal(err, "cannot create plot directory")
		}
		if err := mp.SaveAll(til, "loudest"); err != nil {
			logging.Fatal(err, "cannot render maps")
		}
	}
}

// addInjection adds a sine-gaussian at absolute time injTime to a chunk
// starting at chunkStart, if it falls inside the chunk.
func addInjection(x []float64, fs int, chunkStart, injTime, f0, amp, sigma float64) {
	tc := injTime - chunkStart
	if tc < 0.0 || tc >= float64(len(x))/float64(fs) {
		return
	}
	for i := range x {
		dt := float64(i)/float64(fs) - tc
		if math.Abs(dt) > 8.0*sigma {
			continue
		}
		x[i] += amp * math.Exp(-dt*dt/(2.0*sigma*sigma)) * math.Cos(2.0*math.Pi*f0*dt)
	}
}
