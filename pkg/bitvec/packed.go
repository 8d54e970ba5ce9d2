package bitvec

import (
	"encoding/binary"
	"io"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

// Packed is a fixed-width integer array packed into 64-bit words.
// Widths from 0 to 64 bits are supported; a zero-width array stores
// nothing and reads back zeros.
type Packed struct {
	width uint
	n     int
	words []uint64
}

// NewPacked returns an array of n integers of the given bit width.
func NewPacked(width uint, n int) *Packed {
	if width == 0 {
		return &Packed{width: 0, n: n}
	}
	total := uint(n) * width
	return &Packed{
		width: width,
		n:     n,
		words: make([]uint64, (total+wordBits-1)/wordBits),
	}
}

// Len returns the number of elements.
func (p *Packed) Len() int { return p.n }

// Width returns the bit width of each element.
func (p *Packed) Width() uint { return p.width }

// Set stores val at index i. Bits of val above the array width are
// discarded.
func (p *Packed) Set(i int, val uint64) {
	if p.width == 0 {
		return
	}
	if p.width < wordBits {
		val &= 1<<p.width - 1
	}
	bit := uint(i) * p.width
	word, off := bit/wordBits, bit%wordBits
	p.words[word] &^= (1<<p.width - 1) << off
	p.words[word] |= val << off
	if off+p.width > wordBits {
		spill := off + p.width - wordBits
		p.words[word+1] &^= 1<<spill - 1
		p.words[word+1] |= val >> (p.width - spill)
	}
}

// Get returns the value at index i.
func (p *Packed) Get(i int) uint64 {
	if p.width == 0 {
		return 0
	}
	bit := uint(i) * p.width
	word, off := bit/wordBits, bit%wordBits
	val := p.words[word] >> off
	if off+p.width > wordBits {
		val |= p.words[word+1] << (wordBits - off)
	}
	if p.width < wordBits {
		val &= 1<<p.width - 1
	}
	return val
}

// WriteTo serializes the array.
func (p *Packed) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(p.width))
	if _, err := w.Write(buf[:]); err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint64(buf[:], uint64(p.n))
	if _, err := w.Write(buf[:]); err != nil {
		return 8, err
	}
	written := int64(16)
	for _, word := range p.words {
		binary.BigEndian.PutUint64(buf[:], word)
		if _, err := w.Write(buf[:]); err != nil {
			return written, err
		}
		written += 8
	}
	return written, nil
}

// ReadPacked deserializes an array written by WriteTo.
func ReadPacked(r io.Reader) (*Packed, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading packed array width")
	}
	width := binary.BigEndian.Uint64(buf[:])
	if width > wordBits {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "packed array width %d exceeds 64", width)
	}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading packed array length")
	}
	n := binary.BigEndian.Uint64(buf[:])
	if n > 1<<48 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible packed array length %d", n)
	}
	p := NewPacked(uint(width), int(n))
	for i := range p.words {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading packed array words")
		}
		p.words[i] = binary.BigEndian.Uint64(buf[:])
	}
	return p, nil
}
