package graph

import (
	"math/rand"
	"testing"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

func buildSuccinct(t *testing.T, k int, canonical bool, seqs ...string) DBG {
	t.Helper()
	b, err := NewSuccinctBuilder(k, canonical)
	if err != nil {
		t.Fatalf("NewSuccinctBuilder(%d, %v) = %v", k, canonical, err)
	}
	for _, s := range seqs {
		b.AddSequence([]byte(s))
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	return g
}

func TestSuccinctContains(t *testing.T) {
	g := buildSuccinct(t, 4, false, "ACGTACGT", "TTTTC")

	tests := []struct {
		mer  string
		want bool
	}{
		{"ACGT", true},
		{"CGTA", true},
		{"GTAC", true},
		{"TACG", true},
		{"TTTT", true},
		{"TTTC", true},
		{"AAAA", false},
		{"CCCC", false},
		{"ACGA", false},
		{"ACG", false},
		{"ACGTN", false},
	}
	for _, tt := range tests {
		if got := g.Contains([]byte(tt.mer)); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.mer, got, tt.want)
		}
	}
	if got, want := g.NumNodes(), uint64(6); got != want {
		t.Errorf("NumNodes() = %d, want %d", got, want)
	}
}

func TestSuccinctNodeSeqRoundtrip(t *testing.T) {
	g := buildSuccinct(t, 5, false, randomDNA(300, 1), randomDNA(120, 2))

	for id := NodeID(1); id <= NodeID(g.NumNodes()); id++ {
		mer := g.NodeSeq(id)
		if got := g.Node(mer); got != id {
			t.Fatalf("Node(NodeSeq(%d)) = %d (%q)", id, got, mer)
		}
	}
}

func TestSuccinctNeighbors(t *testing.T) {
	// AC -> CG branches to GA and GT; GT has no successor.
	g := buildSuccinct(t, 3, false, "ACGA", "ACGT")

	id := g.Node([]byte("ACG"))
	if id == NPos {
		t.Fatal("Node(ACG) = NPos")
	}
	got := neighborSeqs(g, id)
	want := []string{"CGA", "CGT"}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(ACG) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors(ACG)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if tail := g.Node([]byte("CGT")); len(g.Neighbors(tail)) != 0 {
		t.Errorf("Neighbors(CGT) = %v, want none", neighborSeqs(g, tail))
	}
}

func TestSuccinctMatchesHash(t *testing.T) {
	const k = 7
	corpus := []string{randomDNA(500, 3), randomDNA(200, 4), "ACGT"}

	succ := buildSuccinct(t, k, false, corpus...)
	hb, err := NewHashBuilder(k, false)
	if err != nil {
		t.Fatalf("NewHashBuilder() = %v", err)
	}
	for _, s := range corpus {
		hb.AddSequence([]byte(s))
	}
	href, err := hb.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	if got, want := succ.NumNodes(), href.NumNodes(); got != want {
		t.Fatalf("NumNodes() = %d, want %d", got, want)
	}

	// Every corpus window agrees, as do random probes.
	for _, s := range corpus {
		for i := 0; i+k <= len(s); i++ {
			mer := []byte(s[i : i+k])
			if !succ.Contains(mer) {
				t.Fatalf("Contains(%q) = false, want true", mer)
			}
			sid, hid := succ.Node(mer), href.Node(mer)
			sn, hn := neighborSeqs(succ, sid), neighborSeqs(href, hid)
			if len(sn) != len(hn) {
				t.Fatalf("Neighbors(%q): succinct %v, hash %v", mer, sn, hn)
			}
			for j := range sn {
				if sn[j] != hn[j] {
					t.Fatalf("Neighbors(%q)[%d] = %q, hash has %q", mer, j, sn[j], hn[j])
				}
			}
		}
	}
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		probe := []byte(randomDNAFrom(rng, k))
		if got, want := succ.Contains(probe), href.Contains(probe); got != want {
			t.Errorf("Contains(%q) = %v, hash says %v", probe, got, want)
		}
	}
}

func TestSuccinctCanonical(t *testing.T) {
	const k = 5
	seq := randomDNA(200, 5)

	canon := buildSuccinct(t, k, true, seq)

	// Both strands are stored, so the node count is the size of the
	// union of forward and reverse-complement windows.
	seen := make(map[string]struct{})
	for i := 0; i+k <= len(seq); i++ {
		mer := []byte(seq[i : i+k])
		seen[string(mer)] = struct{}{}
		seen[string(kmer.RevCompBytes(mer))] = struct{}{}
	}
	if got, want := canon.NumNodes(), uint64(len(seen)); got != want {
		t.Fatalf("canonical NumNodes() = %d, want %d", got, want)
	}
	if !canon.Canonical() {
		t.Error("Canonical() = false")
	}

	for i := 0; i+k <= len(seq); i++ {
		mer := []byte(seq[i : i+k])
		rc := kmer.RevCompBytes(mer)
		fwd, rev := canon.Node(mer), canon.Node(rc)
		if fwd == NPos || fwd != rev {
			t.Fatalf("Node(%q) = %d, Node(revcomp %q) = %d", mer, fwd, rc, rev)
		}
	}
}

func TestSuccinctEmptyCorpus(t *testing.T) {
	b, err := NewSuccinctBuilder(4, false)
	if err != nil {
		t.Fatalf("NewSuccinctBuilder() = %v", err)
	}
	b.AddSequence([]byte("NNNNNN"))
	if _, err := b.Build(); errors.GetCode(err) != errors.ErrCodeEmptyCorpus {
		t.Errorf("Build() error = %v, want %s", err, errors.ErrCodeEmptyCorpus)
	}
}

func TestSuccinctDuplicateInsert(t *testing.T) {
	once := buildSuccinct(t, 4, false, "ACGTACGA")
	twice := buildSuccinct(t, 4, false, "ACGTACGA", "ACGTACGA")
	if got, want := twice.NumNodes(), once.NumNodes(); got != want {
		t.Errorf("NumNodes() after duplicate insert = %d, want %d", got, want)
	}
}

func neighborSeqs(g DBG, id NodeID) []string {
	var out []string
	for _, n := range g.Neighbors(id) {
		out = append(out, string(g.NodeSeq(n)))
	}
	return out
}

func randomDNA(n int, seed int64) string {
	return randomDNAFrom(rand.New(rand.NewSource(seed)), n)
}

func randomDNAFrom(rng *rand.Rand, n int) string {
	const bases = "ACGT"
	out := make([]byte, n)
	for i := range out {
		out[i] = bases[rng.Intn(4)]
	}
	return string(out)
}
