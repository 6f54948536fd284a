package tiling

import (
	"fmt"
	"math"
)

// Config bundles the tiling parameters. Zero values are not meaningful;
// start from DefaultConfig and override.
type Config struct {
	QMin            float64 `json:"q_min"`
	QMax            float64 `json:"q_max"`
	FrequencyMin    float64 `json:"frequency_min"`    // Hz
	FrequencyMax    float64 `json:"frequency_max"`    // Hz, 0 = up to the validity bound
	SampleFrequency int     `json:"sample_frequency"` // Hz
	TimeRange       int     `json:"time_range"`       // chunk duration, s
	Overlap         int     `json:"overlap"`          // chunk overlap, s
	MaximumMismatch float64 `json:"maximum_mismatch"`
	SnrThreshold    float64 `json:"snr_threshold"`
	MapFill         string  `json:"map_fill"`

	PlotTimeWindows []float64 `json:"plot_time_windows,omitempty"` // s
	FullMapTimeBins int       `json:"full_map_time_bins,omitempty"`
}

// DefaultConfig returns the standard burst-search tiling parameters.
func DefaultConfig() *Config {
	return &Config{
		QMin:            4.0,
		QMax:            64.0,
		FrequencyMin:    16.0,
		FrequencyMax:    0.0,
		SampleFrequency: 2048,
		TimeRange:       64,
		Overlap:         4,
		MaximumMismatch: 0.2,
		SnrThreshold:    5.0,
		MapFill:         ContentSnr,
		FullMapTimeBins: 512,
	}
}

// Validate checks the parameters that NewTiling cannot silently adjust.
func (c *Config) Validate() error {
	if c.QMax < c.QMin {
		return fmt.Errorf("q range inverted: [%g, %g]", c.QMin, c.QMax)
	}
	if c.SampleFrequency < 2 {
		return fmt.Errorf("sample frequency too low: %d Hz", c.SampleFrequency)
	}
	if c.FrequencyMax > 0.0 && c.FrequencyMax <= c.FrequencyMin {
		return fmt.Errorf("frequency range inverted: [%g, %g] Hz", c.FrequencyMin, c.FrequencyMax)
	}
	if c.Overlap >= c.TimeRange {
		return fmt.Errorf("overlap %d s >= chunk duration %d s", c.Overlap, c.TimeRange)
	}
	if c.MaximumMismatch <= 0.0 || c.MaximumMismatch > 0.5 {
		return fmt.Errorf("maximum mismatch out of (0, 0.5]: %g", c.MaximumMismatch)
	}
	if math.IsNaN(c.SnrThreshold) || c.SnrThreshold < 0.0 {
		return fmt.Errorf("snr threshold invalid: %g", c.SnrThreshold)
	}
	switch c.MapFill {
	case "", ContentSnr, ContentAmplitude, ContentPhase:
	default:
		return fmt.Errorf("unknown map fill %q", c.MapFill)
	}
	for _, w := range c.PlotTimeWindows {
		if w <= 0.0 || w > float64(c.TimeRange) {
			return fmt.Errorf("plot time window out of (0, %d] s: %g", c.TimeRange, w)
		}
	}
	return nil
}

// NewTilingFromConfig validates the config and builds the tiling.
func NewTilingFromConfig(c *Config) (*Tiling, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("tiling config: %w", err)
	}
	t := NewTiling(c.QMin, c.QMax, c.FrequencyMin, c.FrequencyMax,
		c.SampleFrequency, c.TimeRange, c.Overlap, c.MaximumMismatch)
	t.SetSnrThresholds(c.SnrThreshold)
	if c.MapFill != "" {
		t.SetMapFill(c.MapFill)
	}
	if len(c.PlotTimeWindows) > 0 {
		t.SetPlotTimeWindows(c.PlotTimeWindows, c.FullMapTimeBins)
	}
	return t, nil
}
