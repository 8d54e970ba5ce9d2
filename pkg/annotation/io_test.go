package annotation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seqgraph/seqgraph/pkg/errors"
)

func TestSaveOpenRoundtrip(t *testing.T) {
	for _, kind := range []Kind{KindRow, KindColumn} {
		b := NewBuilder(kind, 6)
		testEntries(b)
		m := b.Build()

		path, err := Save(m, filepath.Join(t.TempDir(), "anno"))
		if err != nil {
			t.Fatalf("Save(%s) = %v", kind, err)
		}
		if !strings.HasSuffix(path, Extension(kind)) {
			t.Errorf("Save(%s) wrote %q, want suffix %q", kind, path, Extension(kind))
		}

		got, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile(%q) = %v", path, err)
		}
		if got.Kind() != kind {
			t.Errorf("%s: loaded Kind() = %q", kind, got.Kind())
		}
		if got.NumLabels() != m.NumLabels() || got.NumObjects() != m.NumObjects() {
			t.Fatalf("%s: loaded %dx%d, want %dx%d", kind,
				got.NumObjects(), got.NumLabels(), m.NumObjects(), m.NumLabels())
		}
		if got.Density() != m.Density() {
			t.Errorf("%s: loaded Density() = %v, want %v", kind, got.Density(), m.Density())
		}
		for i, name := range m.Labels() {
			if got.Labels()[i] != name {
				t.Errorf("%s: Labels()[%d] = %q, want %q", kind, i, got.Labels()[i], name)
			}
		}
		for obj := uint64(0); obj < m.NumObjects(); obj++ {
			want, have := m.CodesOf(obj), got.CodesOf(obj)
			if len(want) != len(have) {
				t.Fatalf("%s: CodesOf(%d) = %v, want %v", kind, obj, have, want)
			}
			for i := range want {
				if have[i] != want[i] {
					t.Errorf("%s: CodesOf(%d)[%d] = %d, want %d", kind, obj, i, have[i], want[i])
				}
			}
		}
	}
}

func TestSaveKeepsExistingSuffix(t *testing.T) {
	b := NewBuilder(KindColumn, 2)
	b.Add(0, b.EncodeLabel("a"))
	base := filepath.Join(t.TempDir(), "anno.column.annodbg")
	path, err := Save(b.Build(), base)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if path != base {
		t.Errorf("Save(%q) = %q, want unchanged", base, path)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.row.annodbg")
	if err := os.WriteFile(path, []byte("seqg.dbg not an annotation"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); errors.GetCode(err) != errors.ErrCodeCorruptIndex {
		t.Errorf("OpenFile(garbage) error = %v, want %s", err, errors.ErrCodeCorruptIndex)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "absent.row.annodbg")); errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("OpenFile(absent) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
