package bitvec

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"
)

func TestSparseSmall(t *testing.T) {
	values := []uint64{3, 4, 7, 13, 14, 15, 21, 43}
	s := NewSparse(values, 64)

	if s.Len() != len(values) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(values))
	}

	for i, want := range values {
		if got := s.Get(i); got != want {
			t.Errorf("Get(%d) = %d, want %d", i, got, want)
		}
	}

	inSet := map[uint64]bool{}
	for _, v := range values {
		inSet[v] = true
	}

	rank := 0
	for x := uint64(0); x < 64; x++ {
		if got := s.Contains(x); got != inSet[x] {
			t.Errorf("Contains(%d) = %v, want %v", x, got, inSet[x])
		}
		if got := s.Rank(x); got != rank {
			t.Errorf("Rank(%d) = %d, want %d", x, got, rank)
		}
		if inSet[x] {
			rank++
		}
	}
}

func TestSparseLargeUniverse(t *testing.T) {
	// Sparse values over a 4^20 universe, like a k=20 code set.
	universe := uint64(1) << 40
	rng := rand.New(rand.NewSource(7))
	seen := map[uint64]bool{}
	for len(seen) < 2000 {
		seen[rng.Uint64()%universe] = true
	}
	values := make([]uint64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	s := NewSparse(values, universe)

	for i, want := range values {
		if got := s.Get(i); got != want {
			t.Fatalf("Get(%d) = %d, want %d", i, got, want)
		}
		idx, ok := s.Index(want)
		if !ok || idx != i {
			t.Fatalf("Index(%d) = (%d, %v), want (%d, true)", want, idx, ok, i)
		}
	}

	// Probing absent values must report absence and correct rank.
	for i := 0; i < 2000; i++ {
		x := rng.Uint64() % universe
		if seen[x] {
			continue
		}
		if s.Contains(x) {
			t.Fatalf("Contains(%d) = true, want false", x)
		}
		want := sort.Search(len(values), func(j int) bool { return values[j] >= x })
		if got := s.Rank(x); got != want {
			t.Fatalf("Rank(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestSparseEmpty(t *testing.T) {
	s := NewSparse(nil, 1<<40)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Contains(17) {
		t.Error("Contains(17) = true, want false")
	}
	if got := s.Rank(17); got != 0 {
		t.Errorf("Rank(17) = %d, want 0", got)
	}
}

func TestSparseOutOfUniverse(t *testing.T) {
	s := NewSparse([]uint64{1, 5}, 8)
	if s.Contains(8) {
		t.Error("Contains(universe) = true, want false")
	}
	if got := s.Rank(100); got != 2 {
		t.Errorf("Rank(beyond universe) = %d, want 2", got)
	}
}

func TestSparseRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 1023, 1024, 99999, 1 << 30}
	s := NewSparse(values, 1<<31)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	got, err := ReadSparse(&buf)
	if err != nil {
		t.Fatalf("ReadSparse() error = %v", err)
	}

	if got.Len() != s.Len() || got.Universe() != s.Universe() {
		t.Fatalf("round trip header = (%d, %d), want (%d, %d)",
			got.Len(), got.Universe(), s.Len(), s.Universe())
	}
	for i, want := range values {
		if g := got.Get(i); g != want {
			t.Errorf("Get(%d) = %d, want %d", i, g, want)
		}
		if !got.Contains(want) {
			t.Errorf("Contains(%d) = false, want true", want)
		}
	}
}
