package query

import (
	"bufio"
	"io"
	"strconv"
)

// Report writes one line per query sequence.
//
// Membership mode emits three tab-separated fields, the last being
// the matched labels joined by colons (empty when nothing matched):
//
//	0	read_1	labelA:labelB
//
// Count mode emits the index and name followed by one
// tab-separated <label>:count entry per matched label:
//
//	0	read_1	<labelA>:12	<labelB>:3
type Report struct {
	w     *bufio.Writer
	count bool
}

// NewReport returns a report writer in the given mode.
func NewReport(w io.Writer, countMode bool) *Report {
	return &Report{w: bufio.NewWriter(w), count: countMode}
}

// Write emits the line for one result. Errors are sticky and also
// surface from Flush.
func (r *Report) Write(res *Result) error {
	buf := r.w
	buf.WriteString(strconv.FormatUint(res.Index, 10))
	buf.WriteByte('\t')
	buf.WriteString(res.Name)
	if r.count {
		for _, lc := range res.Counts {
			buf.WriteString("\t<")
			buf.WriteString(lc.Label)
			buf.WriteString(">:")
			buf.WriteString(strconv.FormatUint(lc.Count, 10))
		}
	} else {
		buf.WriteByte('\t')
		for i, l := range res.Labels {
			if i > 0 {
				buf.WriteByte(':')
			}
			buf.WriteString(l)
		}
	}
	return buf.WriteByte('\n')
}

// Flush drains buffered output.
func (r *Report) Flush() error { return r.w.Flush() }
