package graph

import (
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// HashStr is the raw-string hash map representation. It indexes window
// bytes directly, so k is not bound by the packed 64-bit limit, but
// canonical mode is not supported: without a packed form there is no
// cheap strand collapse at lookup time.
type HashStr struct {
	k    int
	ids  map[string]NodeID
	mers []string
}

var _ DBG = (*HashStr)(nil)

// K returns the window length.
func (g *HashStr) K() int { return g.k }

// Canonical always reports false for this representation.
func (g *HashStr) Canonical() bool { return false }

// NumNodes returns the number of nodes.
func (g *HashStr) NumNodes() uint64 { return uint64(len(g.mers)) }

// Tag returns TagHashStr.
func (g *HashStr) Tag() Tag { return TagHashStr }

// Node resolves a window to its node identifier, or NPos.
func (g *HashStr) Node(mer []byte) NodeID {
	if len(mer) != g.k {
		return NPos
	}
	for _, b := range mer {
		if !kmer.ValidBase(b) {
			return NPos
		}
	}
	return g.ids[string(mer)]
}

// Contains reports whether the window is a node.
func (g *HashStr) Contains(mer []byte) bool {
	return g.Node(mer) != NPos
}

// NodeSeq returns the stored window of a node.
func (g *HashStr) NodeSeq(id NodeID) []byte {
	return []byte(g.mers[id-1])
}

// Neighbors returns the nodes reachable by one outgoing edge, ordered
// by appended base.
func (g *HashStr) Neighbors(id NodeID) []NodeID {
	cur := g.mers[id-1]
	next := make([]byte, g.k)
	copy(next, cur[1:])

	var out []NodeID
	for _, b := range []byte("ACGT") {
		next[g.k-1] = b
		if n := g.ids[string(next)]; n != NPos {
			out = append(out, n)
		}
	}
	return out
}

// HashStrBuilder accumulates windows for a HashStr graph.
type HashStrBuilder struct {
	k    int
	ids  map[string]NodeID
	mers []string
}

var _ Builder = (*HashStrBuilder)(nil)

// NewHashStrBuilder returns a builder for the string-keyed
// representation. Unlike the packed builders it accepts any k >= 2.
func NewHashStrBuilder(k int) (*HashStrBuilder, error) {
	if err := errors.ValidateK(k, false); err != nil {
		return nil, err
	}
	return &HashStrBuilder{
		k:   k,
		ids: make(map[string]NodeID),
	}, nil
}

// K returns the window length.
func (b *HashStrBuilder) K() int { return b.k }

// Canonical always reports false for this representation.
func (b *HashStrBuilder) Canonical() bool { return false }

// InsertMers inserts pre-extracted window strings in order.
func (b *HashStrBuilder) InsertMers(mers []string) {
	for _, mer := range mers {
		b.insert(mer)
	}
}

func (b *HashStrBuilder) insert(mer string) {
	if _, ok := b.ids[mer]; ok {
		return
	}
	b.mers = append(b.mers, mer)
	b.ids[mer] = NodeID(len(b.mers))
}

// AddSequence inserts every valid window of seq.
func (b *HashStrBuilder) AddSequence(seq []byte) {
	w := kmer.ScanWindows(seq, b.k)
	for {
		off, ok := w.Next()
		if !ok {
			break
		}
		b.insert(string(seq[off : off+b.k]))
	}
}

// Build finalizes the graph.
func (b *HashStrBuilder) Build() (DBG, error) {
	if len(b.mers) == 0 {
		return nil, errEmptyCorpus()
	}
	return &HashStr{
		k:    b.k,
		ids:  b.ids,
		mers: b.mers,
	}, nil
}
