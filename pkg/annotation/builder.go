package annotation

import (
	"github.com/seqgraph/seqgraph/pkg/bitvec"
)

// Builder accumulates matrix entries for either layout. The object
// count is fixed up front to the node count of the graph the matrix
// annotates; entries outside that range are dropped.
type Builder struct {
	kind    Kind
	objects uint64
	enc     *LabelEncoder
	rows    [][]uint32
	cols    []*bitvec.Vector
}

// NewBuilder returns a builder for the given layout and object count.
func NewBuilder(kind Kind, objects uint64) *Builder {
	b := &Builder{kind: kind, objects: objects, enc: NewLabelEncoder()}
	if kind == KindRow {
		b.rows = make([][]uint32, objects)
	}
	return b
}

// EncodeLabel interns a label name and returns its code. A label
// registered here counts toward the label total even when no entry is
// ever added for it.
func (b *Builder) EncodeLabel(name string) uint32 {
	return b.enc.Encode(name)
}

// Add marks (obj, code) as set. Codes must come from EncodeLabel.
// Duplicate marks are collapsed at Build.
func (b *Builder) Add(obj uint64, code uint32) {
	if obj >= b.objects {
		return
	}
	switch b.kind {
	case KindColumn:
		for int(code) >= len(b.cols) {
			b.cols = append(b.cols, bitvec.New(int(b.objects)))
		}
		b.cols[code].Set(int(obj))
	default:
		b.rows[obj] = append(b.rows[obj], code)
	}
}

// Build finalizes the matrix.
func (b *Builder) Build() Matrix {
	labels := append([]string(nil), b.enc.Names()...)
	switch b.kind {
	case KindColumn:
		for len(b.cols) < len(labels) {
			b.cols = append(b.cols, bitvec.New(int(b.objects)))
		}
		var ones uint64
		for _, col := range b.cols {
			col.Index()
			ones += uint64(col.Ones())
		}
		return &ColumnMajor{labels: labels, objects: b.objects, cols: b.cols, ones: ones}
	default:
		var ones uint64
		for i := range b.rows {
			b.rows[i] = sortCodes(b.rows[i])
			ones += uint64(len(b.rows[i]))
		}
		return &RowMajor{labels: labels, rows: b.rows, ones: ones}
	}
}
