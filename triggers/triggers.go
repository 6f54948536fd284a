package triggers

import (
	"fmt"

	"github.com/strainlab/qscan/segments"
)

// Trigger is one time-frequency tile above threshold, reported in absolute
// stream time.
type Trigger struct {
	Time           float64 `json:"time"` // tile central time [s]
	TimeStart      float64 `json:"time_start"`
	TimeEnd        float64 `json:"time_end"`
	Frequency      float64 `json:"frequency"` // tile central frequency [Hz]
	FrequencyStart float64 `json:"frequency_start"`
	FrequencyEnd   float64 `json:"frequency_end"`
	Q              float64 `json:"q"`
	SNR            float64 `json:"snr"`
	Amplitude      float64 `json:"amplitude"`
	Phase          float64 `json:"phase"`
}

// Sink receives qualifying tiles from the tiling engine, plus the coverage
// accounting of the chunks that produced them.
type Sink interface {
	// Append adds one trigger to the sink.
	Append(t Trigger) error

	// AddProcessedSegment records [start, end) as covered by the analysis.
	AddProcessedSegment(start, end float64) error
}

// Buffer is an in-memory Sink with an optional capacity guard.
type Buffer struct {
	triggers  []Trigger
	processed *segments.List
	limit     int
}

// NewBuffer creates a buffer. A limit of 0 means unbounded; otherwise
// Append fails once the buffer holds limit triggers, which protects the
// pipeline against noise bursts flooding the output.
func NewBuffer(limit int) *Buffer {
	return &Buffer{
		processed: segments.New(),
		limit:     limit,
	}
}

// Append implements Sink.
func (b *Buffer) Append(t Trigger) error {
	if b.limit > 0 && len(b.triggers) >= b.limit {
		return fmt.Errorf("trigger buffer full (%d triggers)", b.limit)
	}
	b.triggers = append(b.triggers, t)
	return nil
}

// AddProcessedSegment implements Sink.
func (b *Buffer) AddProcessedSegment(start, end float64) error {
	b.processed.Add(start, end)
	return nil
}

// N returns the number of buffered triggers.
func (b *Buffer) N() int { return len(b.triggers) }

// Triggers returns the buffered triggers. The slice is shared, not copied.
func (b *Buffer) Triggers() []Trigger { return b.triggers }

// Processed returns the accumulated processed coverage.
func (b *Buffer) Processed() *segments.List { return b.processed }

// Reset drops all triggers and coverage.
func (b *Buffer) Reset() {
	b.triggers = b.triggers[:0]
	b.processed = segments.New()
}
