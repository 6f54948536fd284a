package tiling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainlab/qscan/segments"
	"github.com/strainlab/qscan/spectrum"
	"github.com/strainlab/qscan/triggers"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.QMin = 4.0
	cfg.QMax = 16.0
	cfg.FrequencyMin = 8.0
	cfg.FrequencyMax = 64.0
	cfg.SampleFrequency = 512
	cfg.TimeRange = 8
	cfg.Overlap = 2
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "inverted q range", mutate: func(c *Config) { c.QMax = 2.0 }, wantErr: true},
		{name: "inverted frequency range", mutate: func(c *Config) { c.FrequencyMax = 4.0 }, wantErr: true},
		{name: "open frequency max", mutate: func(c *Config) { c.FrequencyMax = 0.0 }},
		{name: "overlap too large", mutate: func(c *Config) { c.Overlap = 8 }, wantErr: true},
		{name: "bad mismatch", mutate: func(c *Config) { c.MaximumMismatch = 0.9 }, wantErr: true},
		{name: "bad map fill", mutate: func(c *Config) { c.MapFill = "energy" }, wantErr: true},
		{name: "bad sample frequency", mutate: func(c *Config) { c.SampleFrequency = 1 }, wantErr: true},
		{name: "bad plot window", mutate: func(c *Config) { c.PlotTimeWindows = []float64{100.0} }, wantErr: true},
		{name: "plot windows ok", mutate: func(c *Config) { c.PlotTimeWindows = []float64{2.0, 8.0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTilingFromConfig(t *testing.T) {
	til, err := NewTilingFromConfig(testConfig())
	require.NoError(t, err)

	require.GreaterOrEqual(t, til.QN(), 1)
	for i := 0; i < til.QN()-1; i++ {
		assert.Less(t, til.Q(i), til.Q(i+1), "planes must be in ascending Q")
	}
	assert.Equal(t, 8, til.TimeRange())
	assert.InDelta(t, 8.0, til.FrequencyMin(), 1e-9)
	assert.InDelta(t, 0.2, til.MismatchMax(), 1e-12)
	assert.NotZero(t, til.TileN(0))
	assert.Less(t, til.TileN(1.0), til.TileN(0))

	cfg := testConfig()
	cfg.QMax = 2.0
	_, err = NewTilingFromConfig(cfg)
	assert.Error(t, err)
}

func TestTilingProjectInjection(t *testing.T) {
	til, err := NewTilingFromConfig(testConfig())
	require.NoError(t, err)

	// Burst at +1 s on the map axis.
	data := burstSpectrum(32.0, 5.0, 0.05, 10.0, 512, 8)
	above := til.ProjectData(data)
	assert.NotZero(t, above)
	assert.Greater(t, til.SnrSqMax(), 25.0)

	curve := NewFlatSnrCurve(til.FrequencyMin(), til.FrequencyMax(), 5.0)
	segs := til.GetTileSegments(curve, 1.0)
	require.NotZero(t, segs.N())
	assert.True(t, segs.Contains(1.0))
}

func TestTilingChunkLoop(t *testing.T) {
	til, err := NewTilingFromConfig(testConfig())
	require.NoError(t, err)

	in := segments.NewFromSpans([2]float64{100.0, 116.0})
	require.Equal(t, 3, til.Sequencer().SetSegments(in, nil))

	flat := spectrum.NewFlat(0.125, 2049, 1.0)
	til.SetPower(flat, flat)

	r := rand.New(rand.NewSource(7))
	buf := triggers.NewBuffer(0)
	chunks := 0
	for {
		if _, ok := til.Sequencer().NewChunk(); !ok {
			break
		}
		chunks++
		til.ProjectData(whiteSpectrum(r, 512*8))
		require.NoError(t, til.SaveTriggers(buf))
	}
	assert.Equal(t, 3, chunks)

	// The processed coverage reconstructs the input segment exactly.
	proc := buf.Processed()
	require.Equal(t, 1, proc.N())
	assert.Equal(t, 100.0, proc.Start(0))
	assert.Equal(t, 116.0, proc.End(0))

	// Pure noise against an SNR 5 threshold stays quiet on almost every
	// tile.
	assert.Less(t, uint64(buf.N()), til.TileN(0)/100)
}

func TestTilingFillMaps(t *testing.T) {
	til, err := NewTilingFromConfig(testConfig())
	require.NoError(t, err)
	til.SetPlotTimeWindows([]float64{2.0, 4.0}, 64)

	data := burstSpectrum(32.0, 5.0, 0.05, 10.0, 512, 8)
	til.ProjectData(data)
	til.FillMaps()

	require.Equal(t, 2, til.FullMapN())
	assert.Equal(t, 2.0, til.FullMap(0).Window())
	assert.Equal(t, 4.0, til.FullMap(1).Window())

	// The widest window contains the burst in every full map and in the
	// per-plane maps.
	found := false
	fm := til.FullMap(1)
	for fb := 0; fb < fm.FrequencyBinN(); fb++ {
		for tb := 0; tb < fm.TimeBinN(); tb++ {
			if fm.Content(tb, fb) > 5.0 {
				found = true
			}
		}
	}
	assert.True(t, found, "burst missing from the full map")

	p := til.Plane(0)
	loud := 0.0
	for b := 0; b < p.BandN(); b++ {
		for ti := 0; ti < p.BandTileN(b); ti++ {
			if tc := p.TileTime(ti, b); tc >= -2.0 && tc < 2.0 {
				if v := p.TileContent(ti, b); v > loud {
					loud = v
				}
			}
		}
	}
	assert.Greater(t, loud, 5.0, "burst missing from the plane map")
}
