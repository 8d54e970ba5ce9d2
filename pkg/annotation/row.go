package annotation

// RowMajor keeps the sorted label codes of every object together, so
// per-object lookups cost nothing beyond a slice read.
type RowMajor struct {
	labels []string
	rows   [][]uint32
	ones   uint64
}

var _ Matrix = (*RowMajor)(nil)

// Kind returns KindRow.
func (m *RowMajor) Kind() Kind { return KindRow }

// NumLabels returns the number of distinct labels.
func (m *RowMajor) NumLabels() int { return len(m.labels) }

// NumObjects returns the number of rows.
func (m *RowMajor) NumObjects() uint64 { return uint64(len(m.rows)) }

// Density returns set entries over the full matrix extent.
func (m *RowMajor) Density() float64 {
	return density(m.ones, len(m.labels), m.NumObjects())
}

// Labels returns the label names in code order.
func (m *RowMajor) Labels() []string { return m.labels }

// CodesOf returns the label codes set for an object, ascending. The
// slice is shared and must not be modified.
func (m *RowMajor) CodesOf(obj uint64) []uint32 {
	if obj >= uint64(len(m.rows)) {
		return nil
	}
	return m.rows[obj]
}

// LabelsOf returns the label names set for an object, in code order.
func (m *RowMajor) LabelsOf(obj uint64) []string {
	return resolve(m.labels, m.CodesOf(obj))
}
