package seqio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

func writeCorpus(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing corpus: %v", err)
	}
	return path
}

func readAll(t *testing.T, r *Reader) []*Record {
	t.Helper()
	var records []*Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		records = append(records, rec)
	}
}

func TestReaderFasta(t *testing.T) {
	path := writeCorpus(t, "corpus.fa", ">seq1 first transcript\nacgtacgt\n>seq2\nTTTTNGGGG\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	records := readAll(t, r)
	if len(records) != 2 {
		t.Fatalf("read %d records, want 2", len(records))
	}

	if records[0].ID != "seq1" {
		t.Errorf("records[0].ID = %q, want %q", records[0].ID, "seq1")
	}
	if records[0].Name != "seq1 first transcript" {
		t.Errorf("records[0].Name = %q, want %q", records[0].Name, "seq1 first transcript")
	}
	if got := string(records[0].Seq); got != "ACGTACGT" {
		t.Errorf("records[0].Seq = %q, want %q (uppercased)", got, "ACGTACGT")
	}
	if records[1].Index != 1 {
		t.Errorf("records[1].Index = %d, want 1", records[1].Index)
	}
	if got := string(records[1].Seq); got != "TTTTNGGGG" {
		t.Errorf("records[1].Seq = %q, want %q", got, "TTTTNGGGG")
	}
}

func TestReaderFastq(t *testing.T) {
	path := writeCorpus(t, "reads.fq", "@read1\nACGT\n+\nIIII\n@read2\nggcc\n+\nIIII\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	records := readAll(t, r)
	if len(records) != 2 {
		t.Fatalf("read %d records, want 2", len(records))
	}
	if got := string(records[1].Seq); got != "GGCC" {
		t.Errorf("records[1].Seq = %q, want %q", got, "GGCC")
	}
}

func TestReaderMultipleFiles(t *testing.T) {
	a := writeCorpus(t, "a.fa", ">a1\nACGT\n")
	b := writeCorpus(t, "b.fa", ">b1\nCCCC\n>b2\nGGGG\n")

	r, err := Open(a, b)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	records := readAll(t, r)
	if len(records) != 3 {
		t.Fatalf("read %d records, want 3", len(records))
	}

	// Indexes run across file boundaries.
	for i, rec := range records {
		if rec.Index != uint64(i) {
			t.Errorf("records[%d].Index = %d, want %d", i, rec.Index, i)
		}
	}
	if records[2].File != b {
		t.Errorf("records[2].File = %q, want %q", records[2].File, b)
	}
}

func TestReaderMissingFile(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "nope.fa"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if _, err := r.Read(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Read() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestOpenNoPaths(t *testing.T) {
	if _, err := Open(); err == nil {
		t.Error("Open() error = nil, want INVALID_INPUT")
	}
}

func TestLabelFromHeader(t *testing.T) {
	rec := &Record{ID: "transcript_1", Name: "transcript_1 details", File: "/data/corpus.fa"}

	label, err := rec.Label(LabelFromHeader)
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if label != "transcript_1" {
		t.Errorf("Label() = %q, want %q", label, "transcript_1")
	}
}

func TestLabelFromHeaderMissing(t *testing.T) {
	rec := &Record{Index: 7, File: "/data/corpus.fa"}

	if _, err := rec.Label(LabelFromHeader); !errors.Is(err, errors.ErrCodeMissingLabel) {
		t.Errorf("Label() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeMissingLabel)
	}
}

func TestLabelFromFile(t *testing.T) {
	rec := &Record{ID: "x", File: "/data/transcripts_100.fa"}

	label, err := rec.Label(LabelFromFile)
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if label != "transcripts_100" {
		t.Errorf("Label() = %q, want %q", label, "transcripts_100")
	}
}

func TestReaderRecoversFromBadRecords(t *testing.T) {
	path := writeCorpus(t, "corpus.fa", ">good\nACGTACGT\n>broken\n>good2\nTTTTGGGG\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	var good, bad int
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidRecord) {
				t.Fatalf("Read() error = %v, want INVALID_RECORD", err)
			}
			bad++
			continue
		}
		good++
	}

	if good != 2 {
		t.Errorf("read %d good records, want 2", good)
	}
	if bad != 1 {
		t.Errorf("read %d bad records, want 1", bad)
	}
	es := r.ErrorSummary()
	if es.Total() != 1 {
		t.Errorf("ErrorSummary().Total() = %d, want 1", es.Total())
	}
	if got := es.Count(errors.ErrCodeInvalidRecord); got != 1 {
		t.Errorf("ErrorSummary().Count(INVALID_RECORD) = %d, want 1", got)
	}
}
