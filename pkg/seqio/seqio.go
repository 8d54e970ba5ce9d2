// Package seqio streams sequence records out of FASTA and FASTQ
// corpora.
//
// A [Reader] walks one or more corpus files in order and yields one
// [Record] per sequence. Records are uppercased on read so that every
// graph representation, including the string-keyed one, sees the same
// window bytes. Malformed records surface as recoverable
// INVALID_RECORD errors: callers are expected to count and skip them
// rather than abort the run.
package seqio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

func init() {
	// Window scanning tolerates any byte, so alphabet validation on
	// read would only slow the corpus pass down.
	seq.ValidateSeq = false
}

// LabelMode selects where annotation labels come from.
type LabelMode int

const (
	// LabelFromHeader uses the first whitespace-delimited token of the
	// record header.
	LabelFromHeader LabelMode = iota

	// LabelFromFile uses the corpus file name without its extension.
	LabelFromFile
)

// Record is one corpus sequence.
type Record struct {
	// Index is the zero-based position of the record across the whole
	// corpus, counting all files in order.
	Index uint64

	// ID is the first whitespace-delimited token of the header.
	ID string

	// Name is the full header line.
	Name string

	// Seq holds the uppercased sequence bytes.
	Seq []byte

	// File is the path of the corpus file the record came from.
	File string
}

// Label derives the annotation label for the record.
// Fails with MISSING_LABEL when the selected source is empty.
func (r *Record) Label(mode LabelMode) (string, error) {
	var label string
	switch mode {
	case LabelFromFile:
		base := filepath.Base(r.File)
		label = strings.TrimSuffix(base, filepath.Ext(base))
	default:
		label = r.ID
	}
	if label == "" {
		return "", errors.New(errors.ErrCodeMissingLabel, "record %d has no header label", r.Index)
	}
	if err := errors.ValidateLabel(label); err != nil {
		return "", err
	}
	return label, nil
}

// Reader streams records from a list of corpus files.
// It is not safe for concurrent use.
type Reader struct {
	paths []string
	next  int

	cur     *fastx.Reader
	curPath string

	index   uint64
	summary errors.Summary
}

// Open returns a reader over the given corpus files. The files are
// read in the order given; each may be FASTA or FASTQ, plain or
// gzip-compressed.
func Open(paths ...string) (*Reader, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no corpus files given")
	}
	return &Reader{paths: paths}, nil
}

// Read returns the next record.
//
// It returns io.EOF once all files are exhausted. A per-record
// problem, such as an empty sequence or a syntax error in the middle
// of a file, is reported as an INVALID_RECORD error; the reader stays
// usable and continues with the next record or file. Any other error
// is fatal.
func (r *Reader) Read() (*Record, error) {
	for {
		if r.cur == nil {
			if r.next >= len(r.paths) {
				return nil, io.EOF
			}
			path := r.paths[r.next]
			r.next++
			fr, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening corpus file %s", path)
			}
			r.cur = fr
			r.curPath = path
		}

		rec, err := r.cur.Read()
		if err != nil {
			if err == io.EOF {
				r.cur.Close()
				r.cur = nil
				continue
			}
			// A syntax error poisons the rest of the file; report it
			// once and resume with the next corpus file.
			path := r.curPath
			r.cur.Close()
			r.cur = nil
			rerr := errors.Wrap(errors.ErrCodeInvalidRecord, err, "malformed record in %s", path)
			r.summary.Observe(rerr)
			return nil, rerr
		}

		out := &Record{
			Index: r.index,
			ID:    string(rec.ID),
			Name:  string(rec.Name),
			Seq:   toUpper(rec.Seq.Seq),
			File:  r.curPath,
		}
		r.index++

		if len(out.Seq) == 0 {
			rerr := errors.New(errors.ErrCodeInvalidRecord, "record %d (%s) has an empty sequence", out.Index, out.ID)
			r.summary.Observe(rerr)
			return out, rerr
		}
		return out, nil
	}
}

// Records returns the number of records handed out so far, counting
// the malformed ones.
func (r *Reader) Records() uint64 { return r.index }

// ErrorSummary returns the tally of recoverable per-record problems
// hit so far. Consumers that skip other per-record conditions, such
// as records without a label, add their own counts to it.
func (r *Reader) ErrorSummary() *errors.Summary { return &r.summary }

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	if r.cur != nil {
		r.cur.Close()
		r.cur = nil
	}
	return nil
}

// toUpper uppercases seq into a fresh slice. The fastx reader reuses
// record buffers, so the copy also detaches the record from the
// reader's internal state.
func toUpper(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return out
}
