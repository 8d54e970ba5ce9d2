package graph

import (
	"sort"

	"github.com/seqgraph/seqgraph/pkg/bitvec"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// Bitmap is the sorted-code-set representation. All window codes are
// stored in an Elias-Fano compressed set over the 4^k universe, and a
// node identifier is the rank of its code in that set plus one.
// Identifiers therefore follow code order and do not depend on the
// order the corpus was read in.
type Bitmap struct {
	codec     *kmer.Codec
	canonical bool
	set       *bitvec.Sparse
}

var _ DBG = (*Bitmap)(nil)
var _ CodeLookup = (*Bitmap)(nil)

// K returns the window length.
func (g *Bitmap) K() int { return g.codec.K() }

// Canonical reports whether strand collapsing is active.
func (g *Bitmap) Canonical() bool { return g.canonical }

// NumNodes returns the number of nodes.
func (g *Bitmap) NumNodes() uint64 { return uint64(g.set.Len()) }

// Tag returns TagBitmap.
func (g *Bitmap) Tag() Tag { return TagBitmap }

// NodeByCode resolves a packed window code to a node identifier.
func (g *Bitmap) NodeByCode(code kmer.Code) NodeID {
	if g.canonical {
		code = g.codec.Canonical(code)
	}
	i, ok := g.set.Index(uint64(code))
	if !ok {
		return NPos
	}
	return NodeID(i + 1)
}

// Node resolves a window to its node identifier, or NPos.
func (g *Bitmap) Node(mer []byte) NodeID {
	code, err := g.codec.Encode(mer)
	if err != nil {
		return NPos
	}
	return g.NodeByCode(code)
}

// Contains reports whether the window is a node.
func (g *Bitmap) Contains(mer []byte) bool {
	return g.Node(mer) != NPos
}

// NodeSeq returns the stored window of a node.
func (g *Bitmap) NodeSeq(id NodeID) []byte {
	return g.codec.Decode(kmer.Code(g.set.Get(int(id - 1))))
}

// Neighbors returns the nodes reachable by one outgoing edge, ordered
// by appended base.
func (g *Bitmap) Neighbors(id NodeID) []NodeID {
	var out []NodeID
	cur := kmer.Code(g.set.Get(int(id - 1)))
	for b := kmer.Code(0); b < 4; b++ {
		next, _ := g.codec.Next(cur, "ACGT"[b])
		if n := g.NodeByCode(next); n != NPos {
			out = append(out, n)
		}
	}
	return out
}

// EachCode calls fn for every stored code in ascending order until fn
// returns false.
func (g *Bitmap) EachCode(fn func(kmer.Code) bool) {
	for i := 0; i < g.set.Len(); i++ {
		if !fn(kmer.Code(g.set.Get(i))) {
			return
		}
	}
}

// BitmapBuilder accumulates windows for a Bitmap graph.
type BitmapBuilder struct {
	codec     *kmer.Codec
	canonical bool
	codes     []kmer.Code
}

var _ Builder = (*BitmapBuilder)(nil)
var _ CodeInserter = (*BitmapBuilder)(nil)

// NewBitmapBuilder returns a builder for the bitmap representation.
func NewBitmapBuilder(k int, canonical bool) (*BitmapBuilder, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, err
	}
	return &BitmapBuilder{codec: codec, canonical: canonical}, nil
}

// K returns the window length.
func (b *BitmapBuilder) K() int { return b.codec.K() }

// Canonical reports whether the finalized graph collapses strands.
func (b *BitmapBuilder) Canonical() bool { return b.canonical }

// InsertCodes inserts pre-scanned window codes.
func (b *BitmapBuilder) InsertCodes(codes []kmer.Code) {
	b.codes = append(b.codes, codes...)
}

// AddSequence inserts every valid window of seq, and of its reverse
// complement in canonical mode.
func (b *BitmapBuilder) AddSequence(seq []byte) {
	s := b.codec.Scan(seq)
	for {
		code, ok := s.Next()
		if !ok {
			break
		}
		b.codes = append(b.codes, code)
	}
	if b.canonical {
		rc := b.codec.Scan(kmer.RevCompBytes(seq))
		for {
			code, ok := rc.Next()
			if !ok {
				break
			}
			b.codes = append(b.codes, code)
		}
	}
}

// Build sorts and deduplicates the accumulated codes and finalizes
// the graph.
func (b *BitmapBuilder) Build() (DBG, error) {
	if len(b.codes) == 0 {
		return nil, errEmptyCorpus()
	}

	sort.Slice(b.codes, func(i, j int) bool { return b.codes[i] < b.codes[j] })
	uniq := b.codes[:1]
	for _, c := range b.codes[1:] {
		if c != uniq[len(uniq)-1] {
			uniq = append(uniq, c)
		}
	}

	values := make([]uint64, len(uniq))
	for i, c := range uniq {
		values[i] = uint64(c)
	}

	return &Bitmap{
		codec:     b.codec,
		canonical: b.canonical,
		set:       bitvec.NewSparse(values, uint64(1)<<(2*uint(b.codec.K()))),
	}, nil
}
