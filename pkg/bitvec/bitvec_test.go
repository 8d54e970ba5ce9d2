package bitvec

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestVectorRank(t *testing.T) {
	v := New(1000)
	set := map[int]bool{}
	for _, i := range []int{0, 1, 63, 64, 65, 511, 512, 513, 999} {
		v.Set(i)
		set[i] = true
	}
	v.Index()

	want := 0
	for i := 0; i <= 1000; i++ {
		if got := v.Rank1(i); got != want {
			t.Fatalf("Rank1(%d) = %d, want %d", i, got, want)
		}
		if got := v.Rank0(i); got != i-want {
			t.Fatalf("Rank0(%d) = %d, want %d", i, got, i-want)
		}
		if set[i] {
			want++
		}
	}
}

func TestVectorSelect(t *testing.T) {
	positions := []int{0, 1, 63, 64, 65, 511, 512, 513, 999}
	v := New(1000)
	for _, i := range positions {
		v.Set(i)
	}
	v.Index()

	for r, want := range positions {
		if got := v.Select1(r); got != want {
			t.Errorf("Select1(%d) = %d, want %d", r, got, want)
		}
	}

	if got := v.Select1(len(positions)); got != -1 {
		t.Errorf("Select1(out of range) = %d, want -1", got)
	}

	// Select0 and Select1 are consistent with rank.
	for r := 0; r < v.Len()-v.Ones(); r += 97 {
		p := v.Select0(r)
		if p < 0 {
			t.Fatalf("Select0(%d) = %d, want valid position", r, p)
		}
		if v.Get(p) {
			t.Fatalf("Select0(%d) = %d points at a set bit", r, p)
		}
		if got := v.Rank0(p); got != r {
			t.Fatalf("Rank0(Select0(%d)) = %d, want %d", r, got, r)
		}
	}
}

func TestVectorRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	v := New(4096)
	ref := make([]bool, 4096)
	for i := 0; i < 1500; i++ {
		p := rng.Intn(4096)
		v.Set(p)
		ref[p] = true
	}
	v.Index()

	rank := 0
	for i, b := range ref {
		if got := v.Rank1(i); got != rank {
			t.Fatalf("Rank1(%d) = %d, want %d", i, got, rank)
		}
		if b {
			if got := v.Select1(rank); got != i {
				t.Fatalf("Select1(%d) = %d, want %d", rank, got, i)
			}
			rank++
		}
	}
	if v.Ones() != rank {
		t.Errorf("Ones() = %d, want %d", v.Ones(), rank)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	v := New(130)
	for _, i := range []int{0, 64, 127, 129} {
		v.Set(i)
	}

	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	got, err := ReadVector(&buf)
	if err != nil {
		t.Fatalf("ReadVector() error = %v", err)
	}

	if got.Len() != v.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), v.Len())
	}
	for i := 0; i < v.Len(); i++ {
		if got.Get(i) != v.Get(i) {
			t.Errorf("Get(%d) = %v, want %v", i, got.Get(i), v.Get(i))
		}
	}
}

func TestVectorReadCorrupt(t *testing.T) {
	if _, err := ReadVector(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Error("ReadVector(truncated) error = nil, want error")
	}
}

func TestPacked(t *testing.T) {
	tests := []struct {
		name  string
		width uint
		vals  []uint64
	}{
		{"width 1", 1, []uint64{1, 0, 1, 1, 0}},
		{"width 4 crossing words", 4, []uint64{15, 0, 7, 9, 3, 12, 1, 8, 15, 15, 2, 4, 6, 8, 10, 12, 14, 1}},
		{"width 7 unaligned", 7, []uint64{127, 0, 64, 99, 1, 2, 3, 100, 127, 55}},
		{"width 64", 64, []uint64{0, ^uint64(0), 1 << 63, 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPacked(tt.width, len(tt.vals))
			for i, v := range tt.vals {
				p.Set(i, v)
			}
			for i, want := range tt.vals {
				if got := p.Get(i); got != want {
					t.Errorf("Get(%d) = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestPackedZeroWidth(t *testing.T) {
	p := NewPacked(0, 10)
	p.Set(3, 99)
	if got := p.Get(3); got != 0 {
		t.Errorf("Get(3) = %d, want 0", got)
	}
	if p.Len() != 10 {
		t.Errorf("Len() = %d, want 10", p.Len())
	}
}

func TestPackedRoundTrip(t *testing.T) {
	p := NewPacked(13, 50)
	for i := 0; i < 50; i++ {
		p.Set(i, uint64(i*i)%(1<<13))
	}

	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	got, err := ReadPacked(&buf)
	if err != nil {
		t.Fatalf("ReadPacked() error = %v", err)
	}

	for i := 0; i < 50; i++ {
		if got.Get(i) != p.Get(i) {
			t.Errorf("Get(%d) = %d, want %d", i, got.Get(i), p.Get(i))
		}
	}
}
