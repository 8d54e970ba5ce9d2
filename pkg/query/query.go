// Package query resolves sequences against a graph and its annotation
// matrix and reports the labels they touch.
//
// An [Engine] decomposes each query sequence into overlapping windows,
// resolves every window to a graph node, folds the nodes' label sets
// into per-label hit counts, and emits one report line per input
// sequence in input order. Two executors share those semantics: the
// standard one resolves record by record, the batched one groups
// records into work units and resolves each distinct window once per
// unit. Their output is byte-identical; the batched path is purely a
// throughput optimization.
package query

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/kmer"
	"github.com/seqgraph/seqgraph/pkg/observability"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// Options tune a query run. The zero value reports every matched
// label in membership mode.
type Options struct {
	// CountLabels switches from membership lines to per-label window
	// counts.
	CountLabels bool

	// Fast selects the batched executor.
	Fast bool

	// DiscoveryFraction is the minimum fraction of a sequence's
	// windows that must hit a label for the label to be reported.
	// 0 reports any match.
	DiscoveryFraction float64

	// NumTopLabels caps count-mode entries per sequence. 0 keeps all.
	NumTopLabels int

	// BatchBases sets the work-unit size of the batched executor in
	// sequence bases. 0 uses the default.
	BatchBases int
}

// Stats summarize a query run.
type Stats struct {
	Records uint64 // sequences answered
	Skipped uint64 // malformed records dropped
	Kmers   uint64 // windows resolved
	Hits    uint64 // windows present in the graph
}

// Result is the aggregation for one query sequence.
type Result struct {
	Index  uint64
	Name   string
	Labels []string     // membership mode, label-code order
	Counts []LabelCount // count mode, count desc then label-code asc
}

// LabelCount pairs a label with its window hit count.
type LabelCount struct {
	Label string
	Count uint64
}

// Engine answers label queries against a graph and annotation pair.
// It is read-only and safe for concurrent use.
type Engine struct {
	g     graph.DBG
	anno  annotation.Matrix
	bloom *graph.Bloom
	codec *kmer.Codec      // nil for string-keyed representations
	cl    graph.CodeLookup // nil when codec is nil
}

// New validates that the matrix was built against the index's graph
// and returns an engine over the pair.
func New(idx *graph.Index, m annotation.Matrix) (*Engine, error) {
	g := idx.Graph
	if m.NumObjects() != g.NumNodes() {
		return nil, errors.New(errors.ErrCodeDimensionMismatch,
			"annotation covers %d objects but the graph has %d nodes",
			m.NumObjects(), g.NumNodes())
	}
	e := &Engine{g: g, anno: m, bloom: idx.Bloom}
	if cl, ok := g.(graph.CodeLookup); ok {
		if codec, err := kmer.NewCodec(g.K()); err == nil {
			e.codec, e.cl = codec, cl
		}
	}
	return e, nil
}

// Run streams query records from rdr and writes one report line per
// record to w, preserving input order.
func (e *Engine) Run(ctx context.Context, rdr *seqio.Reader, w io.Writer, opts Options) (Stats, error) {
	mode := "standard"
	if opts.Fast {
		mode = "fast"
	}
	start := time.Now()
	observability.Query().OnQueryStart(ctx, mode)

	rep := NewReport(w, opts.CountLabels)
	var stats Stats
	var err error
	if opts.Fast {
		stats, err = e.runBatched(ctx, rdr, rep, opts)
	} else {
		stats, err = e.runStandard(ctx, rdr, rep, opts)
	}
	if err == nil {
		err = rep.Flush()
	}
	observability.Query().OnQueryComplete(ctx, mode, stats.Records, stats.Hits, time.Since(start), err)
	return stats, err
}

func (e *Engine) runStandard(ctx context.Context, rdr *seqio.Reader, rep *Report, opts Options) (Stats, error) {
	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec, err := rdr.Read()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			if errors.GetCode(err) == errors.ErrCodeInvalidRecord {
				stats.Skipped++
				continue
			}
			return stats, err
		}
		stats.Records++
		total, ids := e.resolve(rec.Seq)
		stats.Kmers += total
		stats.Hits += countHits(ids)
		res := e.result(rec, total, e.aggregate(ids), opts)
		if err := rep.Write(&res); err != nil {
			return stats, err
		}
	}
}

// resolve maps every valid window of seq to a node identifier, NPos
// for windows absent from the graph. The first result is the number
// of valid windows.
func (e *Engine) resolve(seq []byte) (uint64, []graph.NodeID) {
	var total uint64
	var ids []graph.NodeID
	if e.codec != nil {
		s := e.codec.Scan(seq)
		for {
			code, ok := s.Next()
			if !ok {
				break
			}
			total++
			ids = append(ids, e.lookupCode(code))
		}
		return total, ids
	}
	k := e.g.K()
	w := kmer.ScanWindows(seq, k)
	for {
		off, ok := w.Next()
		if !ok {
			break
		}
		total++
		ids = append(ids, e.g.Node(seq[off:off+k]))
	}
	return total, ids
}

// lookupCode resolves one window code, consulting the prefilter
// first when one is attached.
func (e *Engine) lookupCode(code kmer.Code) graph.NodeID {
	if e.bloom != nil {
		key := code
		if e.g.Canonical() {
			key = e.codec.Canonical(code)
		}
		if !e.bloom.MayContain(key) {
			return graph.NPos
		}
	}
	return e.cl.NodeByCode(code)
}

// aggregate folds resolved nodes into per-label window hit counts.
func (e *Engine) aggregate(ids []graph.NodeID) map[uint32]uint64 {
	counts := make(map[uint32]uint64)
	for _, id := range ids {
		if id == graph.NPos {
			continue
		}
		for _, c := range e.anno.CodesOf(uint64(id) - 1) {
			counts[c]++
		}
	}
	return counts
}

// result applies the discovery threshold and ordering rules.
func (e *Engine) result(rec *seqio.Record, total uint64, counts map[uint32]uint64, opts Options) Result {
	threshold := opts.DiscoveryFraction * float64(total)
	res := Result{Index: rec.Index, Name: rec.ID}

	codes := make([]uint32, 0, len(counts))
	for c, n := range counts {
		if float64(n) < threshold {
			continue
		}
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	labels := e.anno.Labels()
	if !opts.CountLabels {
		for _, c := range codes {
			res.Labels = append(res.Labels, labels[c])
		}
		return res
	}

	entries := make([]LabelCount, len(codes))
	for i, c := range codes {
		entries[i] = LabelCount{Label: labels[c], Count: counts[c]}
	}
	// Stable keeps the code-ascending order among equal counts.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	if opts.NumTopLabels > 0 && len(entries) > opts.NumTopLabels {
		entries = entries[:opts.NumTopLabels]
	}
	res.Counts = entries
	return res
}

func countHits(ids []graph.NodeID) uint64 {
	var hits uint64
	for _, id := range ids {
		if id != graph.NPos {
			hits++
		}
	}
	return hits
}
