package bitvec

import (
	"io"
	"math/bits"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

// Sparse is an Elias-Fano encoded set of sorted integers drawn from a
// large universe. It answers membership, rank, and access queries in
// O(log n) while using roughly n*(2 + log2(universe/n)) bits, which
// makes it practical for k-mer code sets whose universe is 4^k.
type Sparse struct {
	n        int
	universe uint64
	lowBits  uint
	lows     *Packed
	high     *Vector
}

// NewSparse encodes the given values, which must be sorted in strictly
// increasing order and all smaller than universe.
func NewSparse(values []uint64, universe uint64) *Sparse {
	n := len(values)
	var l uint
	if n > 0 && universe/uint64(n) >= 2 {
		l = uint(bits.Len64(universe/uint64(n))) - 1
	}
	s := &Sparse{
		n:        n,
		universe: universe,
		lowBits:  l,
		lows:     NewPacked(l, n),
	}
	// With l = floor(log2(universe/n)) the bucket count stays O(n);
	// an empty set must not fall back to one bucket per value.
	buckets := 1
	if n > 0 {
		buckets = int(universe>>l) + 1
	}
	s.high = New(n + buckets)
	for i, v := range values {
		s.lows.Set(i, v&(1<<l-1))
		s.high.Set(int(v>>l) + i)
	}
	s.high.Index()
	return s
}

// Len returns the number of encoded values.
func (s *Sparse) Len() int { return s.n }

// Universe returns the exclusive upper bound of the value domain.
func (s *Sparse) Universe() uint64 { return s.universe }

// Get returns the i-th smallest value.
func (s *Sparse) Get(i int) uint64 {
	p := s.high.Select1(i)
	hi := uint64(p - i)
	return hi<<s.lowBits | s.lows.Get(i)
}

// bucket returns the index range [start, end) of values whose high
// part equals hi.
func (s *Sparse) bucket(hi uint64) (int, int) {
	start := 0
	if hi > 0 {
		p := s.high.Select0(int(hi) - 1)
		if p < 0 {
			return s.n, s.n
		}
		start = p - int(hi) + 1
	}
	q := s.high.Select0(int(hi))
	if q < 0 {
		return start, s.n
	}
	return start, q - int(hi)
}

// Index returns the position of x among the sorted values and whether
// x is present. When absent, the returned position is where x would be
// inserted, which equals the number of values smaller than x.
func (s *Sparse) Index(x uint64) (int, bool) {
	if s.n == 0 || x >= s.universe {
		return s.n, false
	}
	lo := x & (1<<s.lowBits - 1)
	start, end := s.bucket(x >> s.lowBits)
	for i := start; i < end; i++ {
		switch v := s.lows.Get(i); {
		case v == lo:
			return i, true
		case v > lo:
			return i, false
		}
	}
	return end, false
}

// Contains reports whether x is in the set.
func (s *Sparse) Contains(x uint64) bool {
	_, ok := s.Index(x)
	return ok
}

// Rank returns the number of values smaller than x.
func (s *Sparse) Rank(x uint64) int {
	i, _ := s.Index(x)
	return i
}

// WriteTo serializes the set.
func (s *Sparse) WriteTo(w io.Writer) (int64, error) {
	var written int64
	n, err := writeUint64s(w, uint64(s.n), s.universe, uint64(s.lowBits))
	written += n
	if err != nil {
		return written, err
	}
	n, err = s.lows.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}
	n, err = s.high.WriteTo(w)
	written += n
	return written, err
}

// ReadSparse deserializes a set written by WriteTo.
func ReadSparse(r io.Reader) (*Sparse, error) {
	vals, err := readUint64s(r, 3)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading sparse set header")
	}
	s := &Sparse{
		n:        int(vals[0]),
		universe: vals[1],
		lowBits:  uint(vals[2]),
	}
	if s.lowBits > wordBits {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "sparse set low width %d exceeds 64", s.lowBits)
	}
	if s.lows, err = ReadPacked(r); err != nil {
		return nil, err
	}
	if s.high, err = ReadVector(r); err != nil {
		return nil, err
	}
	if s.lows.Len() != s.n {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "sparse set length mismatch: %d lows for %d values", s.lows.Len(), s.n)
	}
	return s, nil
}
