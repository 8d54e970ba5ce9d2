package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

func TestSaveOpenRoundtrip(t *testing.T) {
	corpus := []string{"ACGTACGTTT", "GGGCATAC"}

	tests := []struct {
		tag       Tag
		canonical bool
	}{
		{TagSuccinct, false},
		{TagSuccinct, true},
		{TagBitmap, false},
		{TagBitmap, true},
		{TagHash, false},
		{TagHash, true},
		{TagHashStr, false},
	}
	for _, tt := range tests {
		b, err := NewBuilder(tt.tag, 4, tt.canonical)
		if err != nil {
			t.Fatalf("NewBuilder(%q) = %v", tt.tag, err)
		}
		for _, s := range corpus {
			b.AddSequence([]byte(s))
		}
		g, err := b.Build()
		if err != nil {
			t.Fatalf("Build(%q) = %v", tt.tag, err)
		}

		idx := &Index{Graph: g, BuildID: uuid.New()}
		path, err := Save(idx, filepath.Join(t.TempDir(), "graph"))
		if err != nil {
			t.Fatalf("Save(%q) = %v", tt.tag, err)
		}
		if !strings.HasSuffix(path, Extension(tt.tag)) {
			t.Errorf("Save(%q) wrote %q, want suffix %q", tt.tag, path, Extension(tt.tag))
		}

		got, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile(%q) = %v", path, err)
		}
		if got.BuildID != idx.BuildID {
			t.Errorf("%s: BuildID = %s, want %s", tt.tag, got.BuildID, idx.BuildID)
		}
		if got.Bloom != nil {
			t.Errorf("%s: Bloom = %v, want nil", tt.tag, got.Bloom)
		}
		gg := got.Graph
		if gg.Tag() != tt.tag || gg.K() != 4 || gg.Canonical() != tt.canonical {
			t.Fatalf("%s: loaded tag=%q k=%d canonical=%v", tt.tag, gg.Tag(), gg.K(), gg.Canonical())
		}
		if gg.NumNodes() != g.NumNodes() {
			t.Fatalf("%s: NumNodes() = %d, want %d", tt.tag, gg.NumNodes(), g.NumNodes())
		}
		for id := NodeID(1); id <= NodeID(g.NumNodes()); id++ {
			if want, got := string(g.NodeSeq(id)), string(gg.NodeSeq(id)); got != want {
				t.Fatalf("%s: NodeSeq(%d) = %q, want %q", tt.tag, id, got, want)
			}
		}
		for _, probe := range []string{"ACGT", "TTTT", "GCAT", "CCCC"} {
			if want, got := g.Contains([]byte(probe)), gg.Contains([]byte(probe)); got != want {
				t.Errorf("%s: Contains(%q) = %v, want %v", tt.tag, probe, got, want)
			}
		}
	}
}

func TestSaveKeepsExistingSuffix(t *testing.T) {
	b, _ := NewHashBuilder(4, false)
	b.AddSequence([]byte("ACGTA"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	base := filepath.Join(t.TempDir(), "graph.orhashdbg")
	path, err := Save(&Index{Graph: g}, base)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if path != base {
		t.Errorf("Save(%q) = %q, want unchanged", base, path)
	}
}

func TestSaveWithBloom(t *testing.T) {
	b, _ := NewSuccinctBuilder(5, false)
	b.AddSequence([]byte(randomDNA(120, 21)))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	bloom := BuildBloom(g, 0.01)
	if bloom == nil {
		t.Fatal("BuildBloom() = nil")
	}

	var buf bytes.Buffer
	if err := Write(&Index{Graph: g, Bloom: bloom, BuildID: uuid.New()}, &buf); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if got.Bloom == nil {
		t.Fatal("loaded Bloom = nil")
	}
	miss := 0
	got.Graph.(EachCoder).EachCode(func(c kmer.Code) bool {
		if !got.Bloom.MayContain(c) {
			miss++
		}
		return true
	})
	if miss != 0 {
		t.Errorf("loaded bloom rejected %d stored codes", miss)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dbg")
	if err := os.WriteFile(path, []byte("definitely not a graph"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); errors.GetCode(err) != errors.ErrCodeCorruptIndex {
		t.Errorf("OpenFile(garbage) error = %v, want %s", err, errors.ErrCodeCorruptIndex)
	}
}

func TestOpenRejectsTruncated(t *testing.T) {
	b, _ := NewBitmapBuilder(4, false)
	b.AddSequence([]byte("ACGTACGT"))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&Index{Graph: g}, &buf); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	cut := buf.Bytes()[:buf.Len()/2]
	if _, err := Open(bytes.NewReader(cut)); errors.GetCode(err) != errors.ErrCodeCorruptIndex {
		t.Errorf("Open(truncated) error = %v, want %s", err, errors.ErrCodeCorruptIndex)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "absent.dbg")); errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("OpenFile(absent) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
