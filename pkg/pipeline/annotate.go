package pipeline

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/kmer"
	"github.com/seqgraph/seqgraph/pkg/observability"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// resolved carries one shard's labels and node sets back to the merge.
type resolved struct {
	seq     uint64
	recs    []labeledNodes
	kmers   uint64
	noLabel uint64
}

// labeledNodes is one record's label and the graph nodes its windows
// resolved to, deduplicated and sorted.
type labeledNodes struct {
	label string
	nodes []graph.NodeID
}

// BuildAnnotation marks, for every corpus record, the graph nodes its
// windows resolve to under the record's label. The window length and
// strand mode come from the graph; opts controls label derivation and
// parallelism.
//
// Records without a derivable label are skipped and counted in the
// returned stats. Label codes are assigned in order of first
// appearance in the corpus, so the result is independent of the
// worker count.
func BuildAnnotation(ctx context.Context, corpus *seqio.Reader, g graph.DBG, kind annotation.Kind, opts Options) (annotation.Matrix, Stats, error) {
	var stats Stats
	if _, err := annotation.ParseKind(string(kind)); err != nil {
		return nil, stats, err
	}
	opts.K = g.K()
	opts.Variant = g.Tag()
	opts.Canonical = g.Canonical()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}

	start := time.Now()
	observability.Pipeline().OnAnnotateStart(ctx, string(kind), g.NumNodes())
	bar := newCounter(opts, "annotating")

	jobs := make(chan shard, opts.Workers)
	results := make(chan resolved, opts.Workers)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return readShards(gctx, corpus, opts.BatchBases, jobs, &stats, bar.tick)
	})
	for i := 0; i < opts.Workers; i++ {
		eg.Go(func() error {
			return resolveShards(gctx, g, opts, jobs, results)
		})
	}
	go func() {
		eg.Wait()
		close(results)
	}()

	b := annotation.NewBuilder(kind, g.NumNodes())
	pending := make(map[uint64]resolved)
	var next uint64
	for res := range results {
		pending[res.seq] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			stats.Kmers += r.kmers
			stats.NoLabel += r.noLabel
			corpus.ErrorSummary().Add(errors.ErrCodeMissingLabel, r.noLabel)
			for _, rec := range r.recs {
				code := b.EncodeLabel(rec.label)
				for _, id := range rec.nodes {
					b.Add(uint64(id-1), code)
				}
			}
		}
	}
	if err := eg.Wait(); err != nil {
		bar.abort()
		observability.Pipeline().OnAnnotateComplete(ctx, string(kind), 0, time.Since(start), err)
		return nil, stats, err
	}

	m := b.Build()
	stats.Labels = m.NumLabels()
	stats.Elapsed = time.Since(start)
	bar.done()
	observability.Pipeline().OnAnnotateComplete(ctx, string(kind), stats.Labels, stats.Elapsed, nil)
	opts.Logger.Info("annotation built",
		"layout", m.Kind(),
		"labels", stats.Labels,
		"objects", m.NumObjects(),
		"records", stats.Records,
		"skipped", stats.Skipped,
		"no_label", stats.NoLabel,
		"duration", stats.Elapsed)
	return m, stats, nil
}

// resolveShards maps each record's windows to graph nodes. Lookup goes
// through packed codes when the representation supports it, falling
// back to per-window byte lookups otherwise.
func resolveShards(ctx context.Context, g graph.DBG, opts Options, jobs <-chan shard, results chan<- resolved) error {
	cl, _ := g.(graph.CodeLookup)
	var codec *kmer.Codec
	if cl != nil {
		var err error
		if codec, err = kmer.NewCodec(g.K()); err != nil {
			cl = nil
		}
	}

	for sh := range jobs {
		res := resolved{seq: sh.seq}
		for _, rec := range sh.recs {
			label, err := rec.Label(opts.LabelMode)
			if err != nil {
				res.noLabel++
				continue
			}
			nodes, windows := resolveNodes(g, cl, codec, rec.Seq)
			res.kmers += windows
			res.recs = append(res.recs, labeledNodes{label: label, nodes: nodes})
		}
		select {
		case results <- res:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// resolveNodes returns the distinct nodes the valid windows of seq
// resolve to, sorted, along with the number of valid windows.
func resolveNodes(g graph.DBG, cl graph.CodeLookup, codec *kmer.Codec, seq []byte) ([]graph.NodeID, uint64) {
	var windows uint64
	seen := make(map[graph.NodeID]struct{})

	if cl != nil {
		s := codec.Scan(seq)
		for {
			code, ok := s.Next()
			if !ok {
				break
			}
			windows++
			if id := cl.NodeByCode(code); id != graph.NPos {
				seen[id] = struct{}{}
			}
		}
	} else {
		k := g.K()
		w := kmer.ScanWindows(seq, k)
		for {
			off, ok := w.Next()
			if !ok {
				break
			}
			windows++
			if id := g.Node(seq[off : off+k]); id != graph.NPos {
				seen[id] = struct{}{}
			}
		}
	}

	nodes := make([]graph.NodeID, 0, len(seen))
	for id := range seen {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes, windows
}
