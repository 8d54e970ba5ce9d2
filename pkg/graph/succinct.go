package graph

import (
	"sort"

	"github.com/seqgraph/seqgraph/pkg/bitvec"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// bossAlphabet maps BOSS symbols to characters. Symbol 0 is the dummy
// sentinel prepended to sources and appended to sinks; it sorts before
// every base.
const bossAlphabet = "$ACGT"

const bossSymbols = 5

// Succinct is the BOSS edge-BWT representation. BOSS vertices are the
// (k-1)-length overlaps and BOSS edges are the k-mers themselves, so
// one graph node corresponds to one non-dummy BOSS edge. Edges are
// sorted in colexicographic order of their source vertex; the
// structure keeps only the edge symbols, a handful of bit vectors with
// rank and select support, and per-symbol vertex counts. Lookups walk
// the query window one symbol at a time, narrowing a vertex interval,
// which costs O(k log n) instead of a hash probe but stores the graph
// in a fraction of the space.
//
// Dummy edges pad every vertex to at least one incoming and one
// outgoing edge: a $-labelled sink edge for vertices with no real
// successor, and a $-prefixed source chain for vertices with no real
// predecessor. Dummy edges are masked out of node counts and node
// identifiers.
type Succinct struct {
	codec     *kmer.Codec
	canonical bool

	// w holds the edge symbols in BOSS order, 3 bits each.
	w *bitvec.Packed

	// unflag[s] marks, for symbol s, the first edge into each distinct
	// target vertex. Ranks over these vectors realize the LF mapping
	// from edges to target vertices.
	unflag [bossSymbols]*bitvec.Vector

	// last marks the final edge of every source vertex run.
	last *bitvec.Vector

	// real marks edges whose k-mer contains no dummy symbol.
	real *bitvec.Vector

	// c[s] counts vertices whose label ends with a symbol smaller
	// than s; vertices with last symbol s occupy ranks [c[s], c[s+1]).
	c [bossSymbols + 1]int

	nreal uint64
}

var _ DBG = (*Succinct)(nil)

// K returns the window length.
func (g *Succinct) K() int { return g.codec.K() }

// Canonical reports whether strand collapsing is active.
func (g *Succinct) Canonical() bool { return g.canonical }

// NumNodes returns the number of nodes, not counting dummy edges.
func (g *Succinct) NumNodes() uint64 { return g.nreal }

// Tag returns TagSuccinct.
func (g *Succinct) Tag() Tag { return TagSuccinct }

var _ CodeLookup = (*Succinct)(nil)

// edgeRange returns the half-open edge interval covering the vertices
// in [nlo, nhi).
func (g *Succinct) edgeRange(nlo, nhi int) (int, int) {
	elo := 0
	if nlo > 0 {
		elo = g.last.Select1(nlo-1) + 1
	}
	return elo, g.last.Select1(nhi-1) + 1
}

// edgeOf finds the BOSS edge storing the given window, walking the
// window's symbols from first to last. At step i the vertex interval
// holds exactly the vertices whose label ends with the first i+1
// symbols; following the edges labelled with the next symbol keeps
// that invariant because targets extend their source's suffix.
func (g *Succinct) edgeOf(syms []byte) (int, bool) {
	k := len(syms)
	nlo, nhi := g.c[syms[0]], g.c[syms[0]+1]
	for i := 1; i < k-1 && nlo < nhi; i++ {
		elo, ehi := g.edgeRange(nlo, nhi)
		s := int(syms[i])
		nlo = g.c[s] + g.unflag[s].Rank1(elo)
		nhi = g.c[s] + g.unflag[s].Rank1(ehi)
	}
	if nlo >= nhi {
		return 0, false
	}

	// The interval has converged on the window's source vertex; its
	// outgoing edges carry at most one occurrence of each symbol.
	elo, ehi := g.edgeRange(nlo, nlo+1)
	want := uint64(syms[k-1])
	for e := elo; e < ehi; e++ {
		if g.w.Get(e) == want {
			return e, true
		}
	}
	return 0, false
}

// Node resolves a window to its node identifier, or NPos.
func (g *Succinct) Node(mer []byte) NodeID {
	code, err := g.codec.Encode(mer)
	if err != nil {
		return NPos
	}
	return g.NodeByCode(code)
}

// NodeByCode resolves a window code to its node identifier, applying
// strand collapse in canonical mode.
func (g *Succinct) NodeByCode(code kmer.Code) NodeID {
	if g.canonical {
		code = g.codec.Canonical(code)
	}
	e, ok := g.edgeOf(bossSymbolsOfCode(code, g.codec.K()))
	if !ok || !g.real.Get(e) {
		return NPos
	}
	return NodeID(g.real.Rank1(e) + 1)
}

// Contains reports whether the window is a node.
func (g *Succinct) Contains(mer []byte) bool {
	return g.Node(mer) != NPos
}

// NodeSeq returns the stored window of a node. The suffix symbol is
// the edge label; the remaining symbols are recovered by walking the
// LF mapping backwards through the source vertices.
func (g *Succinct) NodeSeq(id NodeID) []byte {
	e := g.real.Select1(int(id) - 1)
	k := g.codec.K()
	out := make([]byte, k)
	out[k-1] = bossAlphabet[g.w.Get(e)]

	node := g.last.Rank1(e)
	for i := k - 2; i >= 0; i-- {
		s := g.symbolAt(node)
		out[i] = bossAlphabet[s]
		if s == 0 {
			for j := i - 1; j >= 0; j-- {
				out[j] = bossAlphabet[0]
			}
			break
		}
		if i == 0 {
			break
		}
		j := g.unflag[s].Select1(node - g.c[s])
		node = g.last.Rank1(j)
	}
	return out
}

// symbolAt returns the last symbol of the vertex's label.
func (g *Succinct) symbolAt(node int) int {
	for s := bossSymbols - 1; s > 0; s-- {
		if node >= g.c[s] {
			return s
		}
	}
	return 0
}

// Neighbors returns the nodes reachable by one outgoing edge, ordered
// by appended base.
func (g *Succinct) Neighbors(id NodeID) []NodeID {
	if g.canonical {
		// Successors must resolve through strand collapse, so walk
		// them as window lookups instead of raw BOSS edges.
		mer := g.NodeSeq(id)
		next := make([]byte, len(mer))
		copy(next, mer[1:])
		var out []NodeID
		for _, b := range []byte("ACGT") {
			next[len(next)-1] = b
			if n := g.Node(next); n != NPos {
				out = append(out, n)
			}
		}
		return out
	}

	e := g.real.Select1(int(id) - 1)
	s := int(g.w.Get(e))
	tgt := g.c[s] + g.unflag[s].Rank1(e+1) - 1
	elo, ehi := g.edgeRange(tgt, tgt+1)

	var out []NodeID
	for i := elo; i < ehi; i++ {
		if g.w.Get(i) != 0 && g.real.Get(i) {
			out = append(out, NodeID(g.real.Rank1(i)+1))
		}
	}
	return out
}

// EachCode calls fn for every stored k-mer code in BOSS edge order
// until fn returns false.
func (g *Succinct) EachCode(fn func(kmer.Code) bool) {
	for id := uint64(1); id <= g.nreal; id++ {
		code, err := g.codec.Encode(g.NodeSeq(NodeID(id)))
		if err != nil {
			continue
		}
		if !fn(code) {
			return
		}
	}
}

// bossSymbolsOfCode unpacks a window code into BOSS symbols (base
// code plus one, leaving 0 for the dummy sentinel).
func bossSymbolsOfCode(code kmer.Code, k int) []byte {
	syms := make([]byte, k)
	for i := 0; i < k; i++ {
		syms[i] = byte(code>>(2*uint(k-1-i))&3) + 1
	}
	return syms
}

// SuccinctBuilder accumulates windows for a Succinct graph.
type SuccinctBuilder struct {
	codec     *kmer.Codec
	canonical bool
	set       map[kmer.Code]struct{}
}

var _ Builder = (*SuccinctBuilder)(nil)
var _ CodeInserter = (*SuccinctBuilder)(nil)

// NewSuccinctBuilder returns a builder for the succinct
// representation.
func NewSuccinctBuilder(k int, canonical bool) (*SuccinctBuilder, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, err
	}
	return &SuccinctBuilder{
		codec:     codec,
		canonical: canonical,
		set:       make(map[kmer.Code]struct{}),
	}, nil
}

// K returns the window length.
func (b *SuccinctBuilder) K() int { return b.codec.K() }

// Canonical reports whether the finalized graph collapses strands.
func (b *SuccinctBuilder) Canonical() bool { return b.canonical }

// InsertCodes inserts pre-scanned window codes.
func (b *SuccinctBuilder) InsertCodes(codes []kmer.Code) {
	for _, c := range codes {
		b.set[c] = struct{}{}
	}
}

// AddSequence inserts every valid window of seq, and of its reverse
// complement in canonical mode.
func (b *SuccinctBuilder) AddSequence(seq []byte) {
	s := b.codec.Scan(seq)
	for {
		code, ok := s.Next()
		if !ok {
			break
		}
		b.set[code] = struct{}{}
	}
	if b.canonical {
		rc := b.codec.Scan(kmer.RevCompBytes(seq))
		for {
			code, ok := rc.Next()
			if !ok {
				break
			}
			b.set[code] = struct{}{}
		}
	}
}

// bossEdge is a construction-time edge: a source vertex label over
// BOSS symbols plus the edge symbol.
type bossEdge struct {
	src []byte
	sym byte
}

// Build sorts the accumulated k-mers into BOSS form. Dummy edges are
// generated first so that every vertex can be entered and left, then
// the full edge list is sorted colexicographically by source vertex
// and the navigation vectors are derived in one pass.
func (b *SuccinctBuilder) Build() (DBG, error) {
	if len(b.set) == 0 {
		return nil, errEmptyCorpus()
	}

	k := b.codec.K()
	sources := make(map[string]struct{})
	targets := make(map[string]struct{})
	edgeSet := make(map[string]struct{}, len(b.set))
	edges := make([]bossEdge, 0, len(b.set))

	addEdge := func(src []byte, sym byte) {
		key := string(src) + string(sym)
		if _, ok := edgeSet[key]; ok {
			return
		}
		edgeSet[key] = struct{}{}
		edges = append(edges, bossEdge{src: src, sym: sym})
		sources[string(src)] = struct{}{}
	}

	for code := range b.set {
		syms := bossSymbolsOfCode(code, k)
		addEdge(syms[:k-1], syms[k-1])
		targets[string(syms[1:])] = struct{}{}
	}

	// Vertices with no real outgoing edge get a $ sink edge; vertices
	// with no real incoming edge get a $-prefixed source chain down
	// from the all-$ root. The root itself keeps the conventional
	// ($...$, $) edge so the structure is never empty.
	realVertices := make([]string, 0, len(sources)+len(targets))
	seen := make(map[string]struct{}, len(sources)+len(targets))
	for v := range sources {
		seen[v] = struct{}{}
		realVertices = append(realVertices, v)
	}
	for v := range targets {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			realVertices = append(realVertices, v)
		}
	}

	root := make([]byte, k-1)
	addEdge(root, 0)

	for _, v := range realVertices {
		if _, ok := sources[v]; !ok {
			addEdge([]byte(v), 0)
		}
		if _, ok := targets[v]; !ok {
			for j := 0; j < k-1; j++ {
				src := make([]byte, k-1)
				copy(src[k-1-j:], v[:j])
				addEdge(src, v[j])
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		a, c := edges[i], edges[j]
		for p := k - 2; p >= 0; p-- {
			if a.src[p] != c.src[p] {
				return a.src[p] < c.src[p]
			}
		}
		return a.sym < c.sym
	})

	m := len(edges)
	g := &Succinct{
		codec:     b.codec,
		canonical: b.canonical,
		w:         bitvec.NewPacked(3, m),
		last:      bitvec.New(m),
		real:      bitvec.New(m),
	}
	for s := range g.unflag {
		g.unflag[s] = bitvec.New(m)
	}

	var counts [bossSymbols]int
	flagged := make(map[string]struct{}, m)
	tbuf := make([]byte, k-1)
	for i, e := range edges {
		g.w.Set(i, uint64(e.sym))

		copy(tbuf, e.src[1:])
		tbuf[k-2] = e.sym
		tkey := string(e.sym) + string(tbuf)
		if _, ok := flagged[tkey]; !ok {
			flagged[tkey] = struct{}{}
			g.unflag[e.sym].Set(i)
		}

		if i == m-1 || string(edges[i+1].src) != string(e.src) {
			g.last.Set(i)
			counts[e.src[k-2]]++
		}

		if e.sym != 0 && !hasDummy(e.src) {
			g.real.Set(i)
		}
	}

	for s := 0; s < bossSymbols; s++ {
		g.c[s+1] = g.c[s] + counts[s]
	}

	g.last.Index()
	g.real.Index()
	for s := range g.unflag {
		g.unflag[s].Index()
	}
	g.nreal = uint64(g.real.Ones())
	return g, nil
}

func hasDummy(src []byte) bool {
	for _, s := range src {
		if s == 0 {
			return true
		}
	}
	return false
}
