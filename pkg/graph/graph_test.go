package graph

import (
	"testing"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		in      string
		want    Tag
		wantErr bool
	}{
		{"succinct", TagSuccinct, false},
		{"bitmap", TagBitmap, false},
		{"hash", TagHash, false},
		{"hashstr", TagHashStr, false},
		{"", "", true},
		{"fast", "", true},
		{"Succinct", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTag(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewBuilderTags(t *testing.T) {
	for _, tag := range []Tag{TagSuccinct, TagBitmap, TagHash, TagHashStr} {
		b, err := NewBuilder(tag, 4, false)
		if err != nil {
			t.Fatalf("NewBuilder(%q) = %v", tag, err)
		}
		b.AddSequence([]byte("ACGTAC"))
		g, err := b.Build()
		if err != nil {
			t.Fatalf("Build(%q) = %v", tag, err)
		}
		if got := g.Tag(); got != tag {
			t.Errorf("Tag() = %q, want %q", got, tag)
		}
	}
}

func TestNewBuilderHashStrCanonical(t *testing.T) {
	if _, err := NewBuilder(TagHashStr, 4, true); errors.GetCode(err) != errors.ErrCodeUnsupported {
		t.Errorf("NewBuilder(hashstr, canonical) error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestNewBuilderBadK(t *testing.T) {
	for _, tag := range []Tag{TagSuccinct, TagBitmap, TagHash} {
		if _, err := NewBuilder(tag, 32, false); errors.GetCode(err) != errors.ErrCodeUnsupportedK {
			t.Errorf("NewBuilder(%q, k=32) error = %v, want %s", tag, err, errors.ErrCodeUnsupportedK)
		}
	}
	if _, err := NewBuilder(TagHashStr, 1, false); errors.GetCode(err) != errors.ErrCodeUnsupportedK {
		t.Errorf("NewBuilder(hashstr, k=1) error = %v, want %s", err, errors.ErrCodeUnsupportedK)
	}
}

// buildAll constructs the same corpus under every representation that
// supports the requested mode.
func buildAll(t *testing.T, k int, canonical bool, seqs []string) map[Tag]DBG {
	t.Helper()
	out := make(map[Tag]DBG)
	for _, tag := range []Tag{TagSuccinct, TagBitmap, TagHash, TagHashStr} {
		if canonical && !SupportsCanonical(tag) {
			continue
		}
		b, err := NewBuilder(tag, k, canonical)
		if err != nil {
			t.Fatalf("NewBuilder(%q) = %v", tag, err)
		}
		for _, s := range seqs {
			b.AddSequence([]byte(s))
		}
		g, err := b.Build()
		if err != nil {
			t.Fatalf("Build(%q) = %v", tag, err)
		}
		out[tag] = g
	}
	return out
}

func nodeSeqSet(g DBG) map[string]bool {
	set := make(map[string]bool, g.NumNodes())
	for id := NodeID(1); id <= NodeID(g.NumNodes()); id++ {
		set[string(g.NodeSeq(id))] = true
	}
	return set
}

func TestVariantsAgree(t *testing.T) {
	const k = 6
	corpus := []string{randomDNA(400, 11), "ACGTNNACGTTT", randomDNA(90, 12)}

	graphs := buildAll(t, k, false, corpus)
	ref := graphs[TagHash]
	refSet := nodeSeqSet(ref)

	for tag, g := range graphs {
		if got, want := g.NumNodes(), ref.NumNodes(); got != want {
			t.Errorf("%s: NumNodes() = %d, want %d", tag, got, want)
		}
		set := nodeSeqSet(g)
		for mer := range refSet {
			if !set[mer] {
				t.Errorf("%s: stored windows missing %q", tag, mer)
			}
		}
		for mer := range set {
			if !refSet[mer] {
				t.Errorf("%s: stores extra window %q", tag, mer)
			}
		}
	}

	// Lookups and neighborhoods agree window by window.
	for _, s := range corpus {
		w := kmer.ScanWindows([]byte(s), k)
		for {
			off, ok := w.Next()
			if !ok {
				break
			}
			mer := []byte(s[off : off+k])
			want := neighborSeqs(ref, ref.Node(mer))
			for tag, g := range graphs {
				id := g.Node(mer)
				if id == NPos {
					t.Fatalf("%s: Node(%q) = NPos", tag, mer)
				}
				got := neighborSeqs(g, id)
				if len(got) != len(want) {
					t.Fatalf("%s: Neighbors(%q) = %v, want %v", tag, mer, got, want)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Errorf("%s: Neighbors(%q)[%d] = %q, want %q", tag, mer, i, got[i], want[i])
					}
				}
			}
		}
	}

	for _, probe := range []string{"AAAAAA", "TTTTTT", "ACACAC"} {
		want := ref.Contains([]byte(probe))
		for tag, g := range graphs {
			if got := g.Contains([]byte(probe)); got != want {
				t.Errorf("%s: Contains(%q) = %v, want %v", tag, probe, got, want)
			}
		}
	}
}

func TestVariantsAgreeCanonical(t *testing.T) {
	const k = 7
	corpus := []string{randomDNA(300, 13)}

	graphs := buildAll(t, k, true, corpus)
	if _, ok := graphs[TagHashStr]; ok {
		t.Fatal("hashstr built in canonical mode")
	}
	ref := graphs[TagHash]

	for tag, g := range graphs {
		if got, want := g.NumNodes(), ref.NumNodes(); got != want {
			t.Errorf("%s: NumNodes() = %d, want %d", tag, got, want)
		}
		for i := 0; i+k <= len(corpus[0]); i++ {
			mer := []byte(corpus[0][i : i+k])
			rc := kmer.RevCompBytes(mer)
			fwd, rev := g.Node(mer), g.Node(rc)
			if fwd == NPos || fwd != rev {
				t.Fatalf("%s: Node(%q) = %d, Node(revcomp) = %d", tag, mer, fwd, rev)
			}
		}
	}
}

func TestSupportsCanonical(t *testing.T) {
	tests := []struct {
		tag  Tag
		want bool
	}{
		{TagSuccinct, true},
		{TagBitmap, true},
		{TagHash, true},
		{TagHashStr, false},
	}
	for _, tt := range tests {
		if got := SupportsCanonical(tt.tag); got != tt.want {
			t.Errorf("SupportsCanonical(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}
