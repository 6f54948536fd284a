package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainlab/qscan/segments"
)

type chunk struct {
	start  int
	end    int
	newSeg bool
}

func drive(s *Sequencer) []chunk {
	var out []chunk
	for {
		newSeg, ok := s.NewChunk()
		if !ok {
			break
		}
		out = append(out, chunk{start: s.ChunkTimeStart(), end: s.ChunkTimeEnd(), newSeg: newSeg})
	}
	return out
}

func TestSingleChunkSegment(t *testing.T) {
	// time_range=8s, overlap=2s, one 8 s segment: exactly one chunk covering
	// the whole segment, output interval equal to the segment.
	s := New(8, 2)
	n := s.SetSegments(segments.NewFromSpans([2]float64{100, 108}), nil)
	require.Equal(t, 1, n)

	newSeg, ok := s.NewChunk()
	require.True(t, ok)
	assert.True(t, newSeg)
	assert.Equal(t, 100, s.ChunkTimeStart())
	assert.Equal(t, 108, s.ChunkTimeEnd())

	out := s.GetChunkOut()
	require.NotNil(t, out)
	assert.Equal(t, "[100,108)", out.String())

	_, ok = s.NewChunk()
	assert.False(t, ok, "sequence should be exhausted")
}

func TestTailOverlapAdjustment(t *testing.T) {
	// time_range=4s, overlap=2s, one 10 s segment: chunks step by 2 s and
	// the last chunk end lands exactly on the segment end.
	s := New(4, 2)
	n := s.SetSegments(segments.NewFromSpans([2]float64{0, 10}), nil)

	chunks := drive(s)
	require.Len(t, chunks, n, "chunk count must match SetSegments")
	expected := []chunk{
		{0, 4, true},
		{2, 6, false},
		{4, 8, false},
		{6, 10, false},
	}
	assert.Equal(t, expected, chunks)
}

func TestTailOverlapWidened(t *testing.T) {
	// 9 s segment with 4 s chunks: the final step shrinks from 2 s to 1 s,
	// so the final overlap grows from 2 s to 3 s.
	s := New(4, 2)
	n := s.SetSegments(segments.NewFromSpans([2]float64{0, 9}), nil)
	require.Equal(t, 4, n)

	var overlaps []int
	var chunks []chunk
	for {
		newSeg, ok := s.NewChunk()
		if !ok {
			break
		}
		overlaps = append(overlaps, s.CurrentOverlapDuration())
		chunks = append(chunks, chunk{s.ChunkTimeStart(), s.ChunkTimeEnd(), newSeg})
	}

	require.Len(t, chunks, n)
	assert.Equal(t, []chunk{{0, 4, true}, {2, 6, false}, {4, 8, false}, {5, 9, false}}, chunks)
	assert.Equal(t, []int{2, 2, 2, 3}, overlaps)
}

func TestStepReconstruction(t *testing.T) {
	// Consecutive chunk starts differ by time_range-overlap except for the
	// final chunk, and the coverage reconstructs the segment exactly.
	testCases := []struct {
		name      string
		timeRange int
		overlap   int
		length    int
	}{
		{"exact_fit", 8, 4, 32},
		{"leftover_1s", 8, 4, 33},
		{"leftover_3s", 6, 2, 19},
		{"single", 4, 2, 4},
		{"one_step_over", 4, 2, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.timeRange, tc.overlap)
			n := s.SetSegments(segments.NewFromSpans([2]float64{0, float64(tc.length)}), nil)
			chunks := drive(s)
			require.Len(t, chunks, n)

			step := tc.timeRange - tc.overlap
			for i := 1; i < len(chunks); i++ {
				d := chunks[i].start - chunks[i-1].start
				if i < len(chunks)-1 {
					assert.Equal(t, step, d, "intermediate step %d", i)
				} else {
					assert.LessOrEqual(t, d, step, "final step may only shrink")
					assert.Greater(t, d, 0)
				}
			}
			assert.Equal(t, 0, chunks[0].start)
			assert.Equal(t, tc.length, chunks[len(chunks)-1].end, "last chunk must land on the segment end")
		})
	}
}

func TestMultipleSegmentsAndSkipShort(t *testing.T) {
	s := New(4, 2)
	in := segments.NewFromSpans(
		[2]float64{0, 6},
		[2]float64{10, 13}, // shorter than the chunk duration: skipped
		[2]float64{20, 24},
	)
	n := s.SetSegments(in, nil)
	require.Equal(t, 3, n)

	chunks := drive(s)
	require.Len(t, chunks, 3)
	assert.Equal(t, []chunk{
		{0, 4, true},
		{2, 6, false},
		{20, 24, true}, // overlap resets with the new-segment flag
	}, chunks)
}

func TestResetSequenceIdempotence(t *testing.T) {
	s := New(4, 2)
	in := segments.NewFromSpans([2]float64{0, 10}, [2]float64{16, 21})
	s.SetSegments(in, nil)

	first := drive(s)
	s.ResetSequence()
	second := drive(s)

	assert.Equal(t, first, second, "rewound sequence must reproduce chunk boundaries")
}

func TestGetChunkOutOverlapTrimming(t *testing.T) {
	s := New(4, 2)
	s.SetSegments(segments.NewFromSpans([2]float64{0, 8}), nil)

	// Chunk [0,4]: left edge at segment start is kept, right loses 1 s.
	s.NewChunk()
	require.Equal(t, "[0,3)", s.GetChunkOut().String())

	// Chunk [2,6]: loses half the overlap on both sides.
	s.NewChunk()
	require.Equal(t, "[3,5)", s.GetChunkOut().String())

	// Chunk [4,8]: right edge at segment end is kept.
	s.NewChunk()
	require.Equal(t, "[5,8)", s.GetChunkOut().String())
}

func TestGetChunkOutRestriction(t *testing.T) {
	s := New(4, 2)
	out := segments.NewFromSpans([2]float64{0, 2})
	s.SetSegments(segments.NewFromSpans([2]float64{0, 8}), out)

	s.NewChunk()
	require.Equal(t, "[0,2)", s.GetChunkOut().String())

	// Later chunks fall entirely outside the output restriction.
	s.NewChunk()
	assert.Nil(t, s.GetChunkOut())
}

func TestNoQualifyingSegments(t *testing.T) {
	s := New(8, 2)
	n := s.SetSegments(segments.NewFromSpans([2]float64{0, 4}), nil)
	assert.Equal(t, 0, n)

	_, ok := s.NewChunk()
	assert.False(t, ok)
	assert.Nil(t, s.GetChunkOut())
}

func TestConstructionClamping(t *testing.T) {
	testCases := []struct {
		name        string
		timeRange   int
		overlap     int
		wantRange   int
		wantOverlap int
	}{
		{"valid", 8, 2, 8, 2},
		{"too_short", 2, 0, 4, 0},
		{"odd_range", 7, 2, 8, 2},
		{"odd_overlap", 8, 3, 8, 4},
		{"overlap_too_large", 8, 8, 8, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.timeRange, tc.overlap)
			assert.Equal(t, tc.wantRange, s.TimeRange())
			assert.Equal(t, tc.wantOverlap, s.OverlapDuration())
		})
	}
}
