package annotation

import (
	"github.com/seqgraph/seqgraph/pkg/bitvec"
)

// ColumnMajor keeps one bit vector per label. Per-object lookups scan
// every column; whole-label scans touch a single vector.
type ColumnMajor struct {
	labels  []string
	objects uint64
	cols    []*bitvec.Vector
	ones    uint64
}

var _ Matrix = (*ColumnMajor)(nil)

// Kind returns KindColumn.
func (m *ColumnMajor) Kind() Kind { return KindColumn }

// NumLabels returns the number of distinct labels.
func (m *ColumnMajor) NumLabels() int { return len(m.labels) }

// NumObjects returns the number of rows.
func (m *ColumnMajor) NumObjects() uint64 { return m.objects }

// Density returns set entries over the full matrix extent.
func (m *ColumnMajor) Density() float64 {
	return density(m.ones, len(m.labels), m.objects)
}

// Labels returns the label names in code order.
func (m *ColumnMajor) Labels() []string { return m.labels }

// CodesOf returns the label codes set for an object, ascending.
func (m *ColumnMajor) CodesOf(obj uint64) []uint32 {
	if obj >= m.objects {
		return nil
	}
	var out []uint32
	for c, col := range m.cols {
		if col.Get(int(obj)) {
			out = append(out, uint32(c))
		}
	}
	return out
}

// LabelsOf returns the label names set for an object, in code order.
func (m *ColumnMajor) LabelsOf(obj uint64) []string {
	return resolve(m.labels, m.CodesOf(obj))
}
