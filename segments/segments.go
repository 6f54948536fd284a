package segments

import (
	"fmt"
	"sort"
)

// List is an ordered set of disjoint [start, end) intervals, in seconds.
// Intervals are merged on insertion, so the list is always sorted and
// non-overlapping. The zero value is an empty list ready for use.
//
// The chunk sequencer only ever stores integer-valued boundaries; tile
// segments carry fractional tile start/end times. Both share this type.
type List struct {
	starts []float64
	ends   []float64
}

// New creates an empty segment list.
func New() *List {
	return &List{}
}

// NewFromSpans creates a list from (start, end) pairs. Invalid spans
// (end <= start) are dropped. Overlapping spans are merged.
func NewFromSpans(spans ...[2]float64) *List {
	l := New()
	for _, s := range spans {
		l.Add(s[0], s[1])
	}
	return l
}

// N returns the number of disjoint intervals.
func (l *List) N() int {
	return len(l.starts)
}

// Start returns the start of interval i. The index must be valid.
func (l *List) Start(i int) float64 { return l.starts[i] }

// End returns the end of interval i. The index must be valid.
func (l *List) End(i int) float64 { return l.ends[i] }

// First returns the start of the earliest interval, 0 if empty.
func (l *List) First() float64 {
	if len(l.starts) == 0 {
		return 0
	}
	return l.starts[0]
}

// Last returns the end of the latest interval, 0 if empty.
func (l *List) Last() float64 {
	if len(l.ends) == 0 {
		return 0
	}
	return l.ends[len(l.ends)-1]
}

// Duration returns the summed length of all intervals.
func (l *List) Duration() float64 {
	var d float64
	for i := range l.starts {
		d += l.ends[i] - l.starts[i]
	}
	return d
}

// Add inserts [start, end) into the list, merging with any interval it
// overlaps or touches. Spans with end <= start are ignored.
func (l *List) Add(start, end float64) {
	if end <= start {
		return
	}

	// Locate the first interval that could merge with the new one.
	i := sort.Search(len(l.starts), func(k int) bool {
		return l.ends[k] >= start
	})

	if i == len(l.starts) || l.starts[i] > end {
		// No overlap: plain insertion at i.
		l.starts = append(l.starts, 0)
		l.ends = append(l.ends, 0)
		copy(l.starts[i+1:], l.starts[i:])
		copy(l.ends[i+1:], l.ends[i:])
		l.starts[i] = start
		l.ends[i] = end
		return
	}

	// Merge with intervals i..j-1.
	j := i
	for j < len(l.starts) && l.starts[j] <= end {
		j++
	}
	if l.starts[i] < start {
		start = l.starts[i]
	}
	if l.ends[j-1] > end {
		end = l.ends[j-1]
	}
	l.starts[i] = start
	l.ends[i] = end
	l.starts = append(l.starts[:i+1], l.starts[j:]...)
	l.ends = append(l.ends[:i+1], l.ends[j:]...)
}

// Append merges every interval of other into l.
func (l *List) Append(other *List) {
	if other == nil {
		return
	}
	for i := range other.starts {
		l.Add(other.starts[i], other.ends[i])
	}
}

// Intersect returns a new list containing the overlap of l and other.
func (l *List) Intersect(other *List) *List {
	out := New()
	if other == nil {
		return out
	}
	i, j := 0, 0
	for i < len(l.starts) && j < len(other.starts) {
		start := l.starts[i]
		if other.starts[j] > start {
			start = other.starts[j]
		}
		end := l.ends[i]
		if other.ends[j] < end {
			end = other.ends[j]
		}
		if start < end {
			out.Add(start, end)
		}
		if l.ends[i] < other.ends[j] {
			i++
		} else {
			j++
		}
	}
	return out
}

// Contains reports whether t falls inside one of the intervals.
func (l *List) Contains(t float64) bool {
	i := sort.Search(len(l.starts), func(k int) bool {
		return l.ends[k] > t
	})
	return i < len(l.starts) && l.starts[i] <= t
}

// Clone returns a deep copy of the list.
func (l *List) Clone() *List {
	out := &List{
		starts: make([]float64, len(l.starts)),
		ends:   make([]float64, len(l.ends)),
	}
	copy(out.starts, l.starts)
	copy(out.ends, l.ends)
	return out
}

// String renders the list as "[a,b) [c,d) ...", mainly for logs and tests.
func (l *List) String() string {
	s := ""
	for i := range l.starts {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("[%g,%g)", l.starts[i], l.ends[i])
	}
	return s
}
