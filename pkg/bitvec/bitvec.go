// Package bitvec provides bit vectors with rank and select support,
// plus compressed variants built on top of them.
//
// Three structures cover the needs of the graph and annotation layers:
//
//   - [Vector]: a plain bit array with O(1) rank and O(log n) select
//     after indexing. Backs the succinct graph arrays and the column
//     annotation layout.
//   - [Sparse]: an Elias-Fano encoded set of sorted integers from a
//     large universe, with membership and rank queries. Backs the
//     bitmap graph representation.
//   - [Packed]: a fixed-width integer array packed into 64-bit words.
//
// Vectors are mutable until indexed and must not be mutated once
// shared between goroutines. Rank positions are half-open: Rank1(i)
// counts set bits strictly before position i.
package bitvec

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

const (
	wordBits  = 64
	blockWord = 8 // words per rank superblock
	blockBits = wordBits * blockWord
)

// Vector is a bit array with rank and select support.
//
// The zero value is not usable; create vectors with New. Bits are set
// with Set, then Index builds the rank directory. Rank and Select
// lazily index an unindexed vector, so explicit Index calls are only
// needed when the vector will be queried concurrently.
type Vector struct {
	n       int
	words   []uint64
	sup     []int // cumulative ones before each superblock
	ones    int
	indexed bool
}

// New returns a vector of n zero bits.
func New(n int) *Vector {
	return &Vector{
		n:     n,
		words: make([]uint64, (n+wordBits-1)/wordBits),
	}
}

// Len returns the length of the vector in bits.
func (v *Vector) Len() int { return v.n }

// Set sets the bit at position i.
func (v *Vector) Set(i int) {
	v.words[i/wordBits] |= 1 << (uint(i) % wordBits)
	v.indexed = false
}

// Get reports whether the bit at position i is set.
func (v *Vector) Get(i int) bool {
	return v.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Index builds the rank directory. It is idempotent and must be called
// again after any Set once queries have started.
func (v *Vector) Index() {
	nblocks := (len(v.words) + blockWord - 1) / blockWord
	v.sup = make([]int, nblocks+1)
	ones := 0
	for b := 0; b < nblocks; b++ {
		v.sup[b] = ones
		end := (b + 1) * blockWord
		if end > len(v.words) {
			end = len(v.words)
		}
		for _, w := range v.words[b*blockWord : end] {
			ones += bits.OnesCount64(w)
		}
	}
	v.sup[nblocks] = ones
	v.ones = ones
	v.indexed = true
}

// Ones returns the number of set bits.
func (v *Vector) Ones() int {
	if !v.indexed {
		v.Index()
	}
	return v.ones
}

// Rank1 returns the number of set bits in [0, i).
func (v *Vector) Rank1(i int) int {
	if !v.indexed {
		v.Index()
	}
	if i <= 0 {
		return 0
	}
	if i > v.n {
		i = v.n
	}
	word := i / wordBits
	r := v.sup[word/blockWord]
	for _, w := range v.words[(word/blockWord)*blockWord : word] {
		r += bits.OnesCount64(w)
	}
	if rem := uint(i) % wordBits; rem != 0 {
		r += bits.OnesCount64(v.words[word] & (1<<rem - 1))
	}
	return r
}

// Rank0 returns the number of zero bits in [0, i).
func (v *Vector) Rank0(i int) int {
	if i <= 0 {
		return 0
	}
	if i > v.n {
		i = v.n
	}
	return i - v.Rank1(i)
}

// Select1 returns the position of the r-th set bit (0-based),
// or -1 if fewer than r+1 bits are set.
func (v *Vector) Select1(r int) int {
	if !v.indexed {
		v.Index()
	}
	if r < 0 || r >= v.ones {
		return -1
	}
	// Binary search the superblock, then scan words.
	lo, hi := 0, len(v.sup)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if v.sup[mid] <= r {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	rem := r - v.sup[lo]
	for w := lo * blockWord; w < len(v.words); w++ {
		c := bits.OnesCount64(v.words[w])
		if rem < c {
			return w*wordBits + selectWord(v.words[w], rem)
		}
		rem -= c
	}
	return -1
}

// Select0 returns the position of the r-th zero bit (0-based),
// or -1 if fewer than r+1 bits are zero.
func (v *Vector) Select0(r int) int {
	if !v.indexed {
		v.Index()
	}
	if r < 0 || r >= v.n-v.ones {
		return -1
	}
	lo, hi := 0, len(v.sup)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if mid*blockBits-v.sup[mid] <= r {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	rem := r - (lo*blockBits - v.sup[lo])
	for w := lo * blockWord; w < len(v.words); w++ {
		c := wordBits - bits.OnesCount64(v.words[w])
		if rem < c {
			return w*wordBits + selectWord(^v.words[w], rem)
		}
		rem -= c
	}
	return -1
}

// selectWord returns the position of the r-th set bit within a word.
// The caller guarantees the word has more than r set bits.
func selectWord(w uint64, r int) int {
	for ; r > 0; r-- {
		w &= w - 1
	}
	return bits.TrailingZeros64(w)
}

// WriteTo serializes the vector. The rank directory is not written;
// it is rebuilt on load.
func (v *Vector) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v.n))
	if _, err := w.Write(buf[:]); err != nil {
		return 0, err
	}
	written := int64(8)
	for _, word := range v.words {
		binary.BigEndian.PutUint64(buf[:], word)
		if _, err := w.Write(buf[:]); err != nil {
			return written, err
		}
		written += 8
	}
	return written, nil
}

// ReadVector deserializes a vector written by WriteTo and indexes it.
func ReadVector(r io.Reader) (*Vector, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading bit vector length")
	}
	n := binary.BigEndian.Uint64(buf[:])
	if n > 1<<48 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible bit vector length %d", n)
	}
	v := New(int(n))
	for i := range v.words {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading bit vector words")
		}
		v.words[i] = binary.BigEndian.Uint64(buf[:])
	}
	v.Index()
	return v, nil
}
