package graph

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/zeebo/wyhash"

	"github.com/seqgraph/seqgraph/pkg/bitvec"
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// Bloom seeds are fixed so a filter probes identically after a save
// and load cycle.
const (
	bloomSeed1 = 0x9e3779b97f4a7c15
	bloomSeed2 = 0xc2b2ae3d27d4eb4f
)

// EachCoder is implemented by representations that can enumerate their
// stored window codes.
type EachCoder interface {
	EachCode(fn func(kmer.Code) bool)
}

// Bloom is a window-code prefilter in front of a graph. Probes may
// report false positives at roughly the configured rate but never
// false negatives, so a rejected probe skips the graph lookup
// entirely. Positions are derived from two wyhash values combined by
// double hashing.
type Bloom struct {
	bits   *bitvec.Vector
	m      uint64
	hashes int
}

// NewBloom sizes a filter for n entries at false positive probability
// fpp.
func NewBloom(n uint64, fpp float64) *Bloom {
	if n == 0 {
		n = 1
	}
	m := uint64(math.Ceil(-float64(n) * math.Log(fpp) / (math.Ln2 * math.Ln2)))
	if m < 64 {
		m = 64
	}
	h := int(math.Round(float64(m) / float64(n) * math.Ln2))
	if h < 1 {
		h = 1
	}
	if h > 16 {
		h = 16
	}
	return &Bloom{bits: bitvec.New(int(m)), m: m, hashes: h}
}

// BuildBloom constructs a prefilter over every stored code of g, or
// returns nil when the representation cannot enumerate codes.
func BuildBloom(g DBG, fpp float64) *Bloom {
	ec, ok := g.(EachCoder)
	if !ok {
		return nil
	}
	b := NewBloom(g.NumNodes(), fpp)
	ec.EachCode(func(c kmer.Code) bool {
		b.Add(c)
		return true
	})
	return b
}

// Add inserts a window code.
func (b *Bloom) Add(code kmer.Code) {
	h1, h2 := hashPair(code)
	for i := 0; i < b.hashes; i++ {
		b.bits.Set(int((h1 + uint64(i)*h2) % b.m))
	}
}

// MayContain reports whether the code may be present.
func (b *Bloom) MayContain(code kmer.Code) bool {
	h1, h2 := hashPair(code)
	for i := 0; i < b.hashes; i++ {
		if !b.bits.Get(int((h1 + uint64(i)*h2) % b.m)) {
			return false
		}
	}
	return true
}

// Bits returns the filter size in bits.
func (b *Bloom) Bits() uint64 { return b.m }

// Hashes returns the number of probe positions per code.
func (b *Bloom) Hashes() int { return b.hashes }

// FillRate returns the fraction of set bits.
func (b *Bloom) FillRate() float64 {
	return float64(b.bits.Ones()) / float64(b.m)
}

func hashPair(code kmer.Code) (uint64, uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(code))
	h1 := wyhash.Hash(buf[:], bloomSeed1)
	h2 := wyhash.Hash(buf[:], bloomSeed2) | 1
	return h1, h2
}

// WriteTo serializes the filter.
func (b *Bloom) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b.hashes))
	if _, err := w.Write(buf[:]); err != nil {
		return 0, err
	}
	n, err := b.bits.WriteTo(w)
	return 8 + n, err
}

// ReadBloom deserializes a filter written by WriteTo.
func ReadBloom(r io.Reader) (*Bloom, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading bloom hash count")
	}
	h := binary.BigEndian.Uint64(buf[:])
	if h == 0 || h > 64 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible bloom hash count %d", h)
	}
	bits, err := bitvec.ReadVector(r)
	if err != nil {
		return nil, err
	}
	return &Bloom{bits: bits, m: uint64(bits.Len()), hashes: int(h)}, nil
}
