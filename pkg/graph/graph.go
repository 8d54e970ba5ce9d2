// Package graph stores the k-mer set of a sequence corpus as a
// de Bruijn graph under several interchangeable representations.
//
// A node is one observed k-mer (or, in canonical mode, one strand
// form of it); an edge connects node A to node B when the last k-1
// bases of A equal the first k-1 bases of B. Four representations
// implement the same [DBG] interface:
//
//   - [Succinct]: a BOSS-style edge-BWT. Smallest in memory, slower
//     lookups; the default for large corpora.
//   - [Bitmap]: an Elias-Fano set of sorted k-mer codes with rank
//     support. Compact with fast ordered access.
//   - [Hash]: a packed-code hash map with insertion-ordered node
//     identifiers. Fastest construction.
//   - [HashStr]: a raw-string hash map. No packed length limit, but
//     no canonical-mode support.
//
// All representations built from the same corpus with the same k and
// canonical settings agree on Contains, Neighbors, and NumNodes.
// Node identifiers are 1-based and dense; [NPos] marks "not found".
// Identifier assignment is internal to each representation and is not
// comparable across them.
//
// In canonical mode both strands of every sequence are enumerated at
// construction, and lookups map a window and its reverse complement
// to the same node, the one storing the lexicographically smaller
// form.
package graph

import (
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// NodeID identifies a graph node. Identifiers are dense, 1-based, and
// stable for the lifetime of a persisted graph.
type NodeID uint64

// NPos is the identifier returned for windows absent from the graph.
const NPos NodeID = 0

// Tag names a graph representation variant.
type Tag string

// Representation variants.
const (
	TagSuccinct Tag = "succinct"
	TagBitmap   Tag = "bitmap"
	TagHash     Tag = "hash"
	TagHashStr  Tag = "hashstr"
)

// ParseTag validates a representation name.
func ParseTag(name string) (Tag, error) {
	if err := errors.ValidateGraphType(name); err != nil {
		return "", err
	}
	return Tag(name), nil
}

// SupportsCanonical reports whether the representation can collapse
// strands. The string-keyed representation cannot.
func SupportsCanonical(tag Tag) bool {
	return tag != TagHashStr
}

// DBG is the capability interface shared by all graph representations.
//
// Implementations are immutable once built and safe for concurrent
// readers without locking.
type DBG interface {
	// K returns the window length the graph was built with.
	K() int

	// Canonical reports whether strand collapsing is active.
	Canonical() bool

	// NumNodes returns the number of nodes.
	NumNodes() uint64

	// Contains reports whether the window (or, in canonical mode,
	// either strand of it) is a node. Windows containing characters
	// outside the alphabet are never contained.
	Contains(mer []byte) bool

	// Node resolves a window to its node identifier, or NPos when the
	// window is absent or invalid. In canonical mode both strands
	// resolve to the same identifier.
	Node(mer []byte) NodeID

	// NodeSeq returns the stored window of a node. The identifier
	// must be in [1, NumNodes()].
	NodeSeq(id NodeID) []byte

	// Neighbors returns the identifiers of nodes reachable by one
	// outgoing edge, in deterministic order.
	Neighbors(id NodeID) []NodeID

	// Tag returns the representation variant.
	Tag() Tag
}

// CodeLookup is implemented by representations whose nodes resolve
// directly from packed codes, sparing callers the per-window byte
// round trip.
type CodeLookup interface {
	NodeByCode(code kmer.Code) NodeID
}

// Builder accumulates the k-mers of a corpus and finalizes an
// immutable DBG. Builders are not safe for concurrent use; the
// construction pipeline serializes all insertion through one builder.
type Builder interface {
	// K returns the window length.
	K() int

	// Canonical reports whether the finalized graph collapses strands.
	Canonical() bool

	// AddSequence inserts every valid window of seq. In canonical
	// mode the reverse complement strand is inserted as well.
	AddSequence(seq []byte)

	// Build finalizes the graph.
	// Fails with EMPTY_CORPUS when no valid window was inserted.
	Build() (DBG, error)
}

// CodeInserter is implemented by builders of packed representations.
// The construction pipeline scans sequences on worker goroutines and
// feeds the resulting codes through this lower-level entry point; no
// strand doubling is applied.
type CodeInserter interface {
	InsertCodes(codes []kmer.Code)
}

// NewBuilder returns a builder for the given representation.
// Fails with UNSUPPORTED_K when k is invalid for the representation
// and with UNSUPPORTED when canonical mode is requested for the
// string-keyed representation.
func NewBuilder(tag Tag, k int, canonical bool) (Builder, error) {
	switch tag {
	case TagSuccinct:
		return NewSuccinctBuilder(k, canonical)
	case TagBitmap:
		return NewBitmapBuilder(k, canonical)
	case TagHash:
		return NewHashBuilder(k, canonical)
	case TagHashStr:
		if canonical {
			return nil, errors.New(errors.ErrCodeUnsupported, "representation %q does not support canonical mode", tag)
		}
		return NewHashStrBuilder(k)
	default:
		return nil, errors.New(errors.ErrCodeInvalidGraphType, "unknown graph type %q", tag)
	}
}

// errEmptyCorpus is the shared Build failure for builders that saw no
// valid window.
func errEmptyCorpus() error {
	return errors.New(errors.ErrCodeEmptyCorpus, "no valid k-mers extracted from the corpus")
}
