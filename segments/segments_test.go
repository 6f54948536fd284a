package segments

import (
	"testing"
)

func TestAddAndMerge(t *testing.T) {
	testCases := []struct {
		name     string
		spans    [][2]float64
		expected string
	}{
		{"empty", nil, ""},
		{"single", [][2]float64{{0, 10}}, "[0,10)"},
		{"disjoint_ordered", [][2]float64{{0, 4}, {6, 10}}, "[0,4) [6,10)"},
		{"disjoint_unordered", [][2]float64{{6, 10}, {0, 4}}, "[0,4) [6,10)"},
		{"overlapping", [][2]float64{{0, 6}, {4, 10}}, "[0,10)"},
		{"touching", [][2]float64{{0, 4}, {4, 10}}, "[0,10)"},
		{"contained", [][2]float64{{0, 10}, {2, 4}}, "[0,10)"},
		{"bridging", [][2]float64{{0, 4}, {8, 12}, {3, 9}}, "[0,12)"},
		{"invalid_span", [][2]float64{{4, 4}, {6, 2}}, ""},
		{"insert_middle", [][2]float64{{0, 2}, {8, 10}, {4, 6}}, "[0,2) [4,6) [8,10)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewFromSpans(tc.spans...)
			if got := l.String(); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	testCases := []struct {
		name     string
		a        [][2]float64
		b        [][2]float64
		expected string
	}{
		{"identical", [][2]float64{{0, 10}}, [][2]float64{{0, 10}}, "[0,10)"},
		{"disjoint", [][2]float64{{0, 4}}, [][2]float64{{6, 10}}, ""},
		{"partial", [][2]float64{{0, 6}}, [][2]float64{{4, 10}}, "[4,6)"},
		{"touching", [][2]float64{{0, 4}}, [][2]float64{{4, 8}}, ""},
		{
			"multi",
			[][2]float64{{0, 10}, {20, 30}},
			[][2]float64{{5, 25}},
			"[5,10) [20,25)",
		},
		{
			"nested",
			[][2]float64{{0, 100}},
			[][2]float64{{10, 20}, {30, 40}},
			"[10,20) [30,40)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewFromSpans(tc.a...)
			b := NewFromSpans(tc.b...)
			if got := a.Intersect(b).String(); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	l := NewFromSpans([2]float64{0, 4}, [2]float64{10, 16})
	if got := l.Duration(); got != 10 {
		t.Errorf("Duration() = %g, expected 10", got)
	}
}

func TestContains(t *testing.T) {
	l := NewFromSpans([2]float64{0, 4}, [2]float64{10, 16})

	testCases := []struct {
		t        float64
		expected bool
	}{
		{-1, false},
		{0, true},
		{3.999, true},
		{4, false},
		{7, false},
		{10, true},
		{15.5, true},
		{16, false},
	}

	for _, tc := range testCases {
		if got := l.Contains(tc.t); got != tc.expected {
			t.Errorf("Contains(%g) = %v, expected %v", tc.t, got, tc.expected)
		}
	}
}

func TestAppendAndClone(t *testing.T) {
	a := NewFromSpans([2]float64{0, 4})
	b := NewFromSpans([2]float64{2, 8}, [2]float64{20, 24})

	c := a.Clone()
	a.Append(b)

	if got := a.String(); got != "[0,8) [20,24)" {
		t.Errorf("Append: got %q", got)
	}
	if got := c.String(); got != "[0,4)" {
		t.Errorf("Clone was mutated: got %q", got)
	}
}
