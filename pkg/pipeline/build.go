package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/kmer"
	"github.com/seqgraph/seqgraph/pkg/observability"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// scanned carries one shard's extracted windows back to the merge.
// Packed representations fill codes; the string-keyed one fills mers.
type scanned struct {
	seq   uint64
	codes []kmer.Code
	mers  []string
	kmers uint64
}

// merInserter is the string-keyed counterpart of [graph.CodeInserter].
type merInserter interface {
	InsertMers(mers []string)
}

// BuildGraph constructs a graph index from the corpus.
//
// Records are scanned on opts.Workers goroutines and merged back in
// corpus order, so the result is independent of the worker count.
// Malformed records are skipped and counted in the returned stats.
// Fails with EMPTY_CORPUS when no record yields a valid window.
func BuildGraph(ctx context.Context, corpus *seqio.Reader, opts Options) (*graph.Index, Stats, error) {
	var stats Stats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}
	if opts.Canonical && !graph.SupportsCanonical(opts.Variant) {
		opts.Logger.Warn("representation cannot collapse strands, building non-canonical",
			"variant", opts.Variant)
		opts.Canonical = false
	}

	builder, err := graph.NewBuilder(opts.Variant, opts.K, opts.Canonical)
	if err != nil {
		return nil, stats, err
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, string(opts.Variant), opts.K)
	bar := newCounter(opts, "indexing")

	jobs := make(chan shard, opts.Workers)
	results := make(chan scanned, opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readShards(gctx, corpus, opts.BatchBases, jobs, &stats, bar.tick)
	})
	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			return scanShards(gctx, opts, jobs, results)
		})
	}
	go func() {
		g.Wait()
		close(results)
	}()

	// Merge on the calling goroutine. Shards may arrive out of order;
	// hold them back until their turn comes.
	codeIns, _ := builder.(graph.CodeInserter)
	merIns, _ := builder.(merInserter)
	pending := make(map[uint64]scanned)
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
			if codeIns != nil {
				codeIns.InsertCodes(r.codes)
			} else {
				merIns.InsertMers(r.mers)
			}
		}
	}
	if err := g.Wait(); err != nil {
		bar.abort()
		observability.Pipeline().OnBuildComplete(ctx, string(opts.Variant), opts.K, 0, time.Since(start), err)
		return nil, stats, err
	}

	dbg, err := builder.Build()
	if err != nil {
		bar.abort()
		observability.Pipeline().OnBuildComplete(ctx, string(opts.Variant), opts.K, 0, time.Since(start), err)
		return nil, stats, err
	}

	idx := &graph.Index{Graph: dbg, BuildID: uuid.New()}
	if opts.BloomFPP > 0 {
		idx.Bloom = graph.BuildBloom(dbg, opts.BloomFPP)
	}

	stats.Elapsed = time.Since(start)
	bar.done()
	observability.Pipeline().OnBuildComplete(ctx, string(opts.Variant), opts.K, dbg.NumNodes(), stats.Elapsed, nil)
	opts.Logger.Info("graph built",
		"variant", dbg.Tag(),
		"k", dbg.K(),
		"canonical", dbg.Canonical(),
		"nodes", dbg.NumNodes(),
		"records", stats.Records,
		"kmers", stats.Kmers,
		"skipped", stats.Skipped,
		"duration", stats.Elapsed)
	return idx, stats, nil
}

// scanShards extracts the windows of each shard. In canonical mode the
// reverse complement strand follows the forward one record by record,
// matching what a serial AddSequence pass would insert.
func scanShards(ctx context.Context, opts Options, jobs <-chan shard, results chan<- scanned) error {
	var codec *kmer.Codec
	if opts.Variant != graph.TagHashStr {
		var err error
		if codec, err = kmer.NewCodec(opts.K); err != nil {
			return err
		}
	}

	for sh := range jobs {
		res := scanned{seq: sh.seq}
		for _, rec := range sh.recs {
			if codec != nil {
				n := len(res.codes)
				res.codes = appendCodes(res.codes, codec, rec.Seq)
				res.kmers += uint64(len(res.codes) - n)
				if opts.Canonical {
					res.codes = appendCodes(res.codes, codec, kmer.RevCompBytes(rec.Seq))
				}
			} else {
				n := len(res.mers)
				res.mers = appendMers(res.mers, rec.Seq, opts.K)
				res.kmers += uint64(len(res.mers) - n)
			}
		}
		select {
		case results <- res:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// appendCodes appends the packed code of every valid window of seq.
func appendCodes(dst []kmer.Code, codec *kmer.Codec, seq []byte) []kmer.Code {
	s := codec.Scan(seq)
	for {
		code, ok := s.Next()
		if !ok {
			return dst
		}
		dst = append(dst, code)
	}
}

// appendMers appends every valid window of seq as a string.
func appendMers(dst []string, seq []byte, k int) []string {
	w := kmer.ScanWindows(seq, k)
	for {
		off, ok := w.Next()
		if !ok {
			return dst
		}
		dst = append(dst, string(seq[off:off+k]))
	}
}
