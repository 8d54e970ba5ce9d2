// Package annotation stores the sparse boolean matrix tying graph
// nodes to the labels of the sequences they were observed in.
//
// Rows are graph nodes (by identifier, zero-based), columns are labels
// in order of first appearance. Two layouts implement the same
// [Matrix] interface: [RowMajor] keeps the label codes of every node
// together and answers per-node lookups directly, [ColumnMajor] keeps
// one bit vector per label and trades per-node lookup speed for cheap
// whole-label scans. Both layouts report identical label counts,
// object counts and density for the same input.
//
// Matrices are built once through [Builder], persisted with [Save] and
// reopened read-only with [OpenFile]; they are never mutated after
// construction.
package annotation

import (
	"sort"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

// Kind names a matrix layout.
type Kind string

const (
	KindRow    Kind = "row"
	KindColumn Kind = "column"
)

// ParseKind validates a layout name.
func ParseKind(s string) (Kind, error) {
	if err := errors.ValidateAnnoType(s); err != nil {
		return "", err
	}
	return Kind(s), nil
}

// Matrix is the read-only view of an annotation matrix.
type Matrix interface {
	// Kind returns the storage layout.
	Kind() Kind

	// NumLabels returns the number of distinct labels.
	NumLabels() int

	// NumObjects returns the number of rows. It matches the node
	// count of the graph the matrix was built against.
	NumObjects() uint64

	// Density returns set entries over the full label-by-object
	// extent, or 0 for an empty matrix.
	Density() float64

	// Labels returns the label names in code order. The slice is
	// shared and must not be modified.
	Labels() []string

	// CodesOf returns the label codes set for an object, ascending.
	CodesOf(obj uint64) []uint32

	// LabelsOf returns the label names set for an object, in code
	// order.
	LabelsOf(obj uint64) []string
}

// LabelEncoder assigns dense codes to label names in order of first
// appearance.
type LabelEncoder struct {
	codes map[string]uint32
	names []string
}

// NewLabelEncoder returns an empty encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{codes: make(map[string]uint32)}
}

// Encode returns the code for name, assigning the next code on first
// sight.
func (e *LabelEncoder) Encode(name string) uint32 {
	if c, ok := e.codes[name]; ok {
		return c
	}
	c := uint32(len(e.names))
	e.codes[name] = c
	e.names = append(e.names, name)
	return c
}

// Len returns the number of assigned codes.
func (e *LabelEncoder) Len() int { return len(e.names) }

// Names returns the label names in code order. The slice is shared
// and must not be modified.
func (e *LabelEncoder) Names() []string { return e.names }

// resolve maps codes to names through a label table.
func resolve(labels []string, codes []uint32) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = labels[c]
	}
	return out
}

func density(ones uint64, labels int, objects uint64) float64 {
	if labels == 0 || objects == 0 {
		return 0
	}
	return float64(ones) / (float64(labels) * float64(objects))
}

// sortCodes sorts and deduplicates a code slice in place, returning
// the shortened slice.
func sortCodes(codes []uint32) []uint32 {
	if len(codes) < 2 {
		return codes
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	out := codes[:1]
	for _, c := range codes[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}
