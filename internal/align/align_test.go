package align

import (
	"testing"

	"rmss/internal/model"
)

func TestSimilarityIdentical(t *testing.T) {
	for _, p := range []model.Protein{"M", "MK*", "MKVLLIAG"} {
		if got := Similarity(p, p); got != 100 {
			t.Fatalf("Similarity(%s, %s) = %g, want 100", p, p, got)
		}
	}
}

func TestSimilarityEmpty(t *testing.T) {
	for _, p := range []model.Protein{"", "MK*", "MKVL"} {
		if got := Similarity("", p); got != 0 {
			t.Fatalf("Similarity(empty, %s) = %g, want 0", p, got)
		}
		if got := Similarity(p, ""); got != 0 {
			t.Fatalf("Similarity(%s, empty) = %g, want 0", p, got)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]model.Protein{
		{"MKV", "MAV"},
		{"MKVLLIAG", "MKV"},
		{"AAAA", "TTTT"},
		{"MK*", "M*"},
	}
	for _, pair := range pairs {
		ab := Similarity(pair[0], pair[1])
		ba := Similarity(pair[1], pair[0])
		if ab != ba {
			t.Fatalf("Similarity(%s,%s)=%g but Similarity(%s,%s)=%g", pair[0], pair[1], ab, pair[1], pair[0], ba)
		}
	}
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]model.Protein{
		{"MKV", "MAV"},
		{"MKVLLIAG", "GAILLVKM"},
		{"AAAA", "TTTT"},
	}
	for _, pair := range pairs {
		got := Similarity(pair[0], pair[1])
		if got < 0 || got > 100 {
			t.Fatalf("Similarity(%s,%s) = %g out of [0,100]", pair[0], pair[1], got)
		}
	}
}

func TestGlobalScoreKnownValues(t *testing.T) {
	cases := []struct {
		a, b model.Protein
		want float64
	}{
		{"MKV", "MKV", 3},  // all matches
		{"MKV", "MAV", 2},  // one mismatch
		{"MKV", "MKVL", 3}, // one trailing gap, free
		{"MKV", "KV", 2},   // leading gap
		{"AAAA", "TTTT", 0},
	}
	for _, tc := range cases {
		if got := GlobalScore(tc.a, tc.b); got != tc.want {
			t.Fatalf("GlobalScore(%s,%s) = %g, want %g", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarityNormalizesByLongest(t *testing.T) {
	// Score 3 over max length 4.
	if got := Similarity("MKV", "MKVL"); got != 75 {
		t.Fatalf("Similarity(MKV, MKVL) = %g, want 75", got)
	}
}

func TestScorerMemoizesUnorderedPair(t *testing.T) {
	s := NewScorer()
	first := s.Similarity("MKV", "MAV")
	if s.Len() != 1 {
		t.Fatalf("expected 1 cached pair, got %d", s.Len())
	}
	second := s.Similarity("MAV", "MKV")
	if s.Len() != 1 {
		t.Fatalf("reversed pair must hit the same entry, got %d entries", s.Len())
	}
	if first != second {
		t.Fatalf("cache asymmetry: %g vs %g", first, second)
	}
}

func TestScorerReset(t *testing.T) {
	s := NewScorer()
	s.Similarity("MKV", "MAV")
	s.Similarity("MKV", "MKVL")
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("expected empty cache after reset, got %d", s.Len())
	}
}
