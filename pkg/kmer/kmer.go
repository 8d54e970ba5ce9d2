// Package kmer packs fixed-length sequence windows into integer codes
// and back.
//
// Bases are encoded at two bits each (A=0, C=1, G=2, T=3), so the
// numeric order of codes equals the lexicographic order of the
// underlying strings. That property makes the canonical form of a
// k-mer, defined as the lexicographically smaller of the window and
// its reverse complement, computable as a simple minimum of two codes.
//
// Scanning helpers walk a sequence one window at a time, treating any
// character outside the alphabet as a window boundary rather than an
// error: the surrounding k-mers are simply excluded.
package kmer

import (
	"math/bits"

	"github.com/shenwei356/kmers"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

// Code is a 2-bit packed k-mer.
type Code uint64

// MaxK is the longest k-mer a Code can hold.
const MaxK = errors.MaxPackedK

// baseCodes maps sequence characters to 2-bit codes; 0xFF marks
// characters outside the alphabet.
var baseCodes = [256]uint8{}

// baseComps maps sequence characters to their complement; characters
// outside the alphabet map to 'N' and stay invalid.
var baseComps = [256]byte{}

func init() {
	for i := range baseCodes {
		baseCodes[i] = 0xFF
		baseComps[i] = 'N'
	}
	for i, b := range []byte("ACGT") {
		baseCodes[b] = uint8(i)
		baseCodes[b|0x20] = uint8(i) // lowercase
	}
	for _, p := range [][2]byte{{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}} {
		baseComps[p[0]] = p[1]
		baseComps[p[0]|0x20] = p[1]
	}
}

// ValidBase reports whether b is in the accepted alphabet.
func ValidBase(b byte) bool { return baseCodes[b] != 0xFF }

// RevCompBytes returns the reverse complement of seq as a new slice.
// Characters outside the alphabet are preserved as 'N' so that they
// still break k-mer windows on the reverse strand.
func RevCompBytes(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = baseComps[b]
	}
	return out
}

// Codec encodes and decodes k-mers of a fixed length.
type Codec struct {
	k    int
	mask Code
}

// NewCodec returns a codec for k-mers of length k.
// Fails with UNSUPPORTED_K when k is outside [2, MaxK].
func NewCodec(k int) (*Codec, error) {
	if err := errors.ValidateK(k, true); err != nil {
		return nil, err
	}
	return &Codec{k: k, mask: 1<<(2*uint(k)) - 1}, nil
}

// K returns the window length.
func (c *Codec) K() int { return c.k }

// Encode packs a window of exactly k bases.
// Fails with INVALID_SYMBOL when the window contains a character
// outside the alphabet.
func (c *Codec) Encode(mer []byte) (Code, error) {
	if len(mer) != c.k {
		return 0, errors.New(errors.ErrCodeInvalidInput, "window length %d does not match k=%d", len(mer), c.k)
	}
	code, err := kmers.Encode(mer)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidSymbol, err, "encoding window %q", mer)
	}
	return Code(code), nil
}

// Decode unpacks a code into its k-base window.
func (c *Codec) Decode(code Code) []byte {
	return kmers.MustDecode(uint64(code), c.k)
}

// Next slides the window one base to the right: it drops the leading
// base of prev and appends b. Fails with INVALID_SYMBOL for characters
// outside the alphabet.
func (c *Codec) Next(prev Code, b byte) (Code, error) {
	bc := baseCodes[b]
	if bc == 0xFF {
		return 0, &errors.InvalidSymbolError{Symbol: b}
	}
	return (prev<<2 | Code(bc)) & c.mask, nil
}

// RevComp returns the code of the reverse complement window.
func (c *Codec) RevComp(code Code) Code {
	// Complementing flips both bits of every base; reversing the base
	// order is a 2-bit grouped bit reversal.
	v := uint64(^code)
	v = (v&0x3333333333333333)<<2 | (v>>2)&0x3333333333333333
	v = (v&0x0F0F0F0F0F0F0F0F)<<4 | (v>>4)&0x0F0F0F0F0F0F0F0F
	v = bits.ReverseBytes64(v)
	return Code(v >> (64 - 2*uint(c.k)))
}

// Canonical returns the smaller of code and its reverse complement.
// With 2-bit packing the numeric minimum is the lexicographic minimum.
func (c *Codec) Canonical(code Code) Code {
	if rc := c.RevComp(code); rc < code {
		return rc
	}
	return code
}

// CanonicalBytes returns the lexicographically smaller of mer and its
// reverse complement. The input must contain only alphabet characters.
func CanonicalBytes(mer []byte) []byte {
	rc := RevCompBytes(mer)
	for i := range mer {
		switch {
		case rc[i] < mer[i]:
			return rc
		case rc[i] > mer[i]:
			return mer
		}
	}
	return mer
}
