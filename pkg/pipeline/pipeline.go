// Package pipeline turns sequence corpora into graph indexes and
// annotation matrices.
//
// # Architecture
//
// Construction runs as a three-stage pipeline:
//
//	read → scan (parallel) → merge (serial)
//
// A reader goroutine batches corpus records into shards of roughly
// BatchBases bases. Worker goroutines scan each shard into packed
// window codes (or raw window strings for the string-keyed
// representation) without touching shared state. The caller's
// goroutine folds the scanned shards back in corpus order, so the
// finished graph is identical no matter how many workers ran.
//
// Annotation follows the same shape: workers resolve each record's
// windows against the immutable graph, and the merge assigns label
// codes in first-appearance order before marking the matrix.
//
// # Usage
//
//	corpus, err := seqio.Open("genomes.fa")
//	if err != nil {
//		return err
//	}
//	defer corpus.Close()
//
//	idx, stats, err := pipeline.BuildGraph(ctx, corpus, pipeline.Options{
//		K:       31,
//		Variant: graph.TagSuccinct,
//	})
//	if err != nil {
//		return err
//	}
//	path, err := graph.Save(idx, "index")
package pipeline

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// Defaults applied by [Options.ValidateAndSetDefaults].
const (
	// DefaultK is the window length used when none is given.
	DefaultK = 31

	// DefaultVariant is the representation built when none is given.
	DefaultVariant = graph.TagSuccinct

	// DefaultBatchBases bounds how many sequence bases are grouped
	// into one scan shard.
	DefaultBatchBases = 1 << 20
)

// Options configures one pipeline run. The zero value is usable:
// ValidateAndSetDefaults fills in every unset field.
type Options struct {
	// K is the window length.
	K int `json:"k"`

	// Variant selects the graph representation to build.
	Variant graph.Tag `json:"variant"`

	// Canonical collapses both strands of every window onto one node.
	// A representation that cannot collapse strands falls back to a
	// non-canonical build with a warning.
	Canonical bool `json:"canonical"`

	// Workers is the number of scan goroutines. Zero means one per
	// available CPU.
	Workers int `json:"workers"`

	// BloomFPP, when positive, attaches a Bloom membership prefilter
	// with the given false-positive rate to the built index.
	BloomFPP float64 `json:"bloom_fpp"`

	// LabelMode selects where annotation labels come from.
	LabelMode seqio.LabelMode `json:"label_mode"`

	// BatchBases bounds the bases grouped into one scan shard. Mostly
	// a test knob; the default suits real corpora.
	BatchBases int `json:"batch_bases"`

	// Logger receives run summaries and fallback warnings.
	Logger *log.Logger `json:"-"`

	// Progress renders a live record counter on stderr.
	Progress bool `json:"progress"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent: calling it on already-validated options is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.K == 0 {
		o.K = DefaultK
	}
	if o.Variant == "" {
		o.Variant = DefaultVariant
	}
	if _, err := graph.ParseTag(string(o.Variant)); err != nil {
		return err
	}
	if err := errors.ValidateK(o.K, o.Variant != graph.TagHashStr); err != nil {
		return err
	}
	if err := errors.ValidateBloomFPP(o.BloomFPP); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BatchBases <= 0 {
		o.BatchBases = DefaultBatchBases
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Stats summarizes one pipeline run.
type Stats struct {
	// Records is the number of corpus records consumed, counting the
	// skipped ones.
	Records uint64 `json:"records"`

	// Bases is the total sequence length read.
	Bases uint64 `json:"bases"`

	// Kmers is the number of valid windows extracted, counting each
	// window once regardless of strand mode.
	Kmers uint64 `json:"kmers"`

	// Skipped counts malformed records that were dropped.
	Skipped uint64 `json:"skipped"`

	// NoLabel counts records dropped because no annotation label
	// could be derived for them.
	NoLabel uint64 `json:"no_label,omitempty"`

	// Labels is the number of distinct labels encoded.
	Labels int `json:"labels,omitempty"`

	// Elapsed is the wall-clock run time.
	Elapsed time.Duration `json:"elapsed"`
}

// shard is a batch of corpus records handed to one scan worker. The
// sequence number restores corpus order at merge time.
type shard struct {
	seq  uint64
	recs []*seqio.Record
}

// readShards batches corpus records into shards of roughly batchBases
// bases and sends them in corpus order. Malformed records are counted
// and skipped. The jobs channel is closed on return.
func readShards(ctx context.Context, corpus *seqio.Reader, batchBases int, jobs chan<- shard, stats *Stats, tick func()) error {
	defer close(jobs)

	var (
		cur   shard
		bases int
	)
	flush := func() error {
		if len(cur.recs) == 0 {
			return nil
		}
		select {
		case jobs <- cur:
		case <-ctx.Done():
			return ctx.Err()
		}
		cur = shard{seq: cur.seq + 1}
		bases = 0
		return nil
	}

	for {
		rec, err := corpus.Read()
		if err == io.EOF {
			return flush()
		}
		if err != nil {
			if errors.GetCode(err) == errors.ErrCodeInvalidRecord {
				stats.Records++
				stats.Skipped++
				tick()
				continue
			}
			return err
		}
		stats.Records++
		stats.Bases += uint64(len(rec.Seq))
		tick()

		cur.recs = append(cur.recs, rec)
		if bases += len(rec.Seq); bases >= batchBases {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
