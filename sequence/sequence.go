package sequence

import (
	"github.com/strainlab/qscan/logging"
	"github.com/strainlab/qscan/segments"
)

type span struct {
	start int
	end   int
}

// Sequencer walks an input segment list as a series of fixed-duration,
// nominally-overlapping analysis chunks:
//
//	------------------------------------------------------------ current segment
//	 |------------------| chunk i-1
//	                |------------------| chunk i
//	                               |------------------| chunk i+1
//
//	                |---| overlap
//
// Segments shorter than the chunk duration are skipped. For the last chunk
// of a segment the overlap is stretched so the chunk end lands exactly on
// the segment end; the chunk duration never changes. When a new segment
// starts, the overlap is reset to its nominal value.
//
// All segment boundaries are treated as integer seconds.
type Sequencer struct {
	timeRange      int
	overlap        int
	overlapCurrent int
	t0             int // current chunk center
	segIdx         int
	pending        bool // next chunk opens the current segment
	segs           []span
	outSegs        *segments.List
}

// New creates a sequencer with the given chunk duration and nominal overlap,
// both in seconds. The duration is clamped to an even number of at least 4 s,
// the overlap to an even number smaller than the duration. Re-query the
// effective values with TimeRange and OverlapDuration after construction.
func New(timeRange, overlap int) *Sequencer {
	if timeRange < 4 {
		timeRange = 4
	}
	if timeRange%2 != 0 {
		timeRange++
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap%2 != 0 {
		overlap++
	}
	if overlap >= timeRange {
		overlap = timeRange - 2
	}

	return &Sequencer{
		timeRange:      timeRange,
		overlap:        overlap,
		overlapCurrent: overlap,
	}
}

// TimeRange returns the chunk duration [s].
func (s *Sequencer) TimeRange() int { return s.timeRange }

// OverlapDuration returns the nominal overlap duration [s].
func (s *Sequencer) OverlapDuration() int { return s.overlap }

// CurrentOverlapDuration returns the overlap of the current chunk [s]. It
// matches the nominal overlap except for the last chunk of a segment.
func (s *Sequencer) CurrentOverlapDuration() int { return s.overlapCurrent }

// ChunkTimeCenter returns the central time of the current chunk [s].
func (s *Sequencer) ChunkTimeCenter() int { return s.t0 }

// ChunkTimeStart returns the start time of the current chunk [s].
func (s *Sequencer) ChunkTimeStart() int { return s.t0 - s.timeRange/2 }

// ChunkTimeEnd returns the end time of the current chunk [s].
func (s *Sequencer) ChunkTimeEnd() int { return s.t0 + s.timeRange/2 }

// SetSegments loads a new input segment list and, optionally, a list of
// output-restriction segments applied by GetChunkOut. Input segments shorter
// than the chunk duration are discarded. Segment boundaries are truncated to
// integer seconds. The sequence is rewound to the first qualifying segment.
//
// The returned value is the total number of chunks needed to cover the input.
func (s *Sequencer) SetSegments(in, out *segments.List) int {
	s.segs = s.segs[:0]
	s.outSegs = out

	n := 0
	step := s.timeRange - s.overlap
	if in != nil {
		for i := 0; i < in.N(); i++ {
			start, end := int(in.Start(i)), int(in.End(i))
			if end-start < s.timeRange {
				continue
			}
			s.segs = append(s.segs, span{start: start, end: end})
			extra := end - start - s.timeRange
			n += 1 + (extra+step-1)/step
		}
	}

	s.ResetSequence()

	logging.Debug("sequence: segments loaded", logging.Fields{
		"segments": len(s.segs),
		"chunks":   n,
	})
	return n
}

// ResetSequence rewinds to the first qualifying segment. The segments loaded
// with SetSegments are kept.
func (s *Sequencer) ResetSequence() {
	s.segIdx = 0
	s.pending = true
	s.overlapCurrent = s.overlap
	s.t0 = 0
}

// NewChunk advances to the next chunk. It returns the status of the
// sequence: false means there are no more chunks to load. newSeg is true
// when the chunk is the first of a new input segment.
func (s *Sequencer) NewChunk() (newSeg, ok bool) {
	if s.segIdx >= len(s.segs) {
		return false, false
	}

	seg := s.segs[s.segIdx]
	if s.pending {
		// First chunk of the current segment.
		s.pending = false
		s.t0 = seg.start + s.timeRange/2
		s.overlapCurrent = s.overlap
		return true, true
	}

	if s.t0+s.timeRange/2 >= seg.end {
		// The previous chunk closed this segment: move on.
		s.segIdx++
		if s.segIdx >= len(s.segs) {
			return false, false
		}
		seg = s.segs[s.segIdx]
		s.t0 = seg.start + s.timeRange/2
		s.overlapCurrent = s.overlap
		return true, true
	}

	next := s.t0 + s.timeRange - s.overlap
	if next+s.timeRange/2 > seg.end {
		// Tail chunk: stretch the overlap so the chunk end lands on the
		// segment end. The duration is preserved.
		next = seg.end - s.timeRange/2
		s.overlapCurrent = s.timeRange - (next - s.t0)
	} else {
		s.overlapCurrent = s.overlap
	}
	s.t0 = next
	return false, true
}

// GetChunkOut returns the sub-interval of the current chunk that is new,
// i.e. not shared with a neighboring chunk: half the current overlap is
// removed on the left, half the nominal overlap on the right, except at
// segment boundaries where the chunk edge is kept. The result is
// intersected with the output segments given to SetSegments, if any.
//
// It returns nil if the sequence is exhausted or the intersection is empty.
func (s *Sequencer) GetChunkOut() *segments.List {
	if s.pending || s.segIdx >= len(s.segs) {
		return nil
	}
	seg := s.segs[s.segIdx]

	start := float64(s.ChunkTimeStart())
	if s.ChunkTimeStart() != seg.start {
		start += float64(s.overlapCurrent) / 2.0
	}
	end := float64(s.ChunkTimeEnd())
	if s.ChunkTimeEnd() != seg.end {
		end -= float64(s.overlap) / 2.0
	}

	out := segments.NewFromSpans([2]float64{start, end})
	if s.outSegs != nil {
		out = out.Intersect(s.outSegs)
	}
	if out.N() == 0 {
		return nil
	}
	return out
}
