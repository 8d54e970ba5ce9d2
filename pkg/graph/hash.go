package graph

import (
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// Hash is the packed-code hash map representation. Node identifiers
// follow insertion order, so graphs built from the same corpus in the
// same order are byte-identical when persisted.
type Hash struct {
	codec     *kmer.Codec
	canonical bool
	ids       map[kmer.Code]NodeID
	codes     []kmer.Code
}

var _ DBG = (*Hash)(nil)
var _ CodeLookup = (*Hash)(nil)

// K returns the window length.
func (g *Hash) K() int { return g.codec.K() }

// Canonical reports whether strand collapsing is active.
func (g *Hash) Canonical() bool { return g.canonical }

// NumNodes returns the number of nodes.
func (g *Hash) NumNodes() uint64 { return uint64(len(g.codes)) }

// Tag returns TagHash.
func (g *Hash) Tag() Tag { return TagHash }

// NodeByCode resolves a packed window code to a node identifier.
func (g *Hash) NodeByCode(code kmer.Code) NodeID {
	if g.canonical {
		code = g.codec.Canonical(code)
	}
	return g.ids[code]
}

// Node resolves a window to its node identifier, or NPos.
func (g *Hash) Node(mer []byte) NodeID {
	code, err := g.codec.Encode(mer)
	if err != nil {
		return NPos
	}
	return g.NodeByCode(code)
}

// Contains reports whether the window is a node.
func (g *Hash) Contains(mer []byte) bool {
	return g.Node(mer) != NPos
}

// NodeSeq returns the stored window of a node.
func (g *Hash) NodeSeq(id NodeID) []byte {
	return g.codec.Decode(g.codes[id-1])
}

// Neighbors returns the nodes reachable by one outgoing edge, ordered
// by appended base.
func (g *Hash) Neighbors(id NodeID) []NodeID {
	var out []NodeID
	cur := g.codes[id-1]
	for b := kmer.Code(0); b < 4; b++ {
		next, _ := g.codec.Next(cur, "ACGT"[b])
		if n := g.NodeByCode(next); n != NPos {
			out = append(out, n)
		}
	}
	return out
}

// EachCode calls fn for every stored code in insertion order until fn
// returns false.
func (g *Hash) EachCode(fn func(kmer.Code) bool) {
	for _, c := range g.codes {
		if !fn(c) {
			return
		}
	}
}

// HashBuilder accumulates windows for a Hash graph.
type HashBuilder struct {
	codec     *kmer.Codec
	canonical bool
	ids       map[kmer.Code]NodeID
	codes     []kmer.Code
}

var _ Builder = (*HashBuilder)(nil)
var _ CodeInserter = (*HashBuilder)(nil)

// NewHashBuilder returns a builder for the hash representation.
func NewHashBuilder(k int, canonical bool) (*HashBuilder, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, err
	}
	return &HashBuilder{
		codec:     codec,
		canonical: canonical,
		ids:       make(map[kmer.Code]NodeID),
	}, nil
}

// K returns the window length.
func (b *HashBuilder) K() int { return b.codec.K() }

// Canonical reports whether the finalized graph collapses strands.
func (b *HashBuilder) Canonical() bool { return b.canonical }

func (b *HashBuilder) insert(code kmer.Code) {
	if _, ok := b.ids[code]; ok {
		return
	}
	b.codes = append(b.codes, code)
	b.ids[code] = NodeID(len(b.codes))
}

// InsertCodes inserts pre-scanned window codes in order.
func (b *HashBuilder) InsertCodes(codes []kmer.Code) {
	for _, c := range codes {
		b.insert(c)
	}
}

// AddSequence inserts every valid window of seq, and of its reverse
// complement in canonical mode.
func (b *HashBuilder) AddSequence(seq []byte) {
	s := b.codec.Scan(seq)
	for {
		code, ok := s.Next()
		if !ok {
			break
		}
		b.insert(code)
	}
	if b.canonical {
		rc := b.codec.Scan(kmer.RevCompBytes(seq))
		for {
			code, ok := rc.Next()
			if !ok {
				break
			}
			b.insert(code)
		}
	}
}

// Build finalizes the graph.
func (b *HashBuilder) Build() (DBG, error) {
	if len(b.codes) == 0 {
		return nil, errEmptyCorpus()
	}
	return &Hash{
		codec:     b.codec,
		canonical: b.canonical,
		ids:       b.ids,
		codes:     b.codes,
	}, nil
}
