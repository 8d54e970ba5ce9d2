package query

import (
	"context"
	"io"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/kmer"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// Work units group records until their sequence bases reach this size.
const defaultBatchBases = 1 << 20

// pending carries one record's scanned windows until its work unit is
// replayed.
type pending struct {
	rec   *seqio.Record
	total uint64
	codes []kmer.Code // packed representations
	mers  []string    // string-keyed representation
}

// runBatched groups records into work units, resolves each distinct
// window of a unit once, then replays the per-sequence aggregation in
// input order. Output is byte-identical to the standard executor.
func (e *Engine) runBatched(ctx context.Context, rdr *seqio.Reader, rep *Report, opts Options) (Stats, error) {
	limit := opts.BatchBases
	if limit <= 0 {
		limit = defaultBatchBases
	}
	var stats Stats
	unit := make([]pending, 0, 64)
	bases := 0

	flush := func() error {
		if len(unit) == 0 {
			return nil
		}
		var err error
		if e.codec != nil {
			err = e.replayCodes(unit, rep, opts, &stats)
		} else {
			err = e.replayMers(unit, rep, opts, &stats)
		}
		unit = unit[:0]
		bases = 0
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.GetCode(err) == errors.ErrCodeInvalidRecord {
				stats.Skipped++
				continue
			}
			return stats, err
		}
		stats.Records++

		p := pending{rec: rec}
		if e.codec != nil {
			s := e.codec.Scan(rec.Seq)
			for {
				code, ok := s.Next()
				if !ok {
					break
				}
				p.total++
				p.codes = append(p.codes, code)
			}
		} else {
			k := e.g.K()
			w := kmer.ScanWindows(rec.Seq, k)
			for {
				off, ok := w.Next()
				if !ok {
					break
				}
				p.total++
				p.mers = append(p.mers, string(rec.Seq[off:off+k]))
			}
		}
		unit = append(unit, p)
		bases += len(rec.Seq)
		if bases >= limit {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	return stats, flush()
}

func (e *Engine) replayCodes(unit []pending, rep *Report, opts Options, stats *Stats) error {
	resolved := make(map[kmer.Code]graph.NodeID)
	for i := range unit {
		for _, c := range unit[i].codes {
			resolved[c] = graph.NPos
		}
	}
	for c := range resolved {
		resolved[c] = e.lookupCode(c)
	}

	ids := make([]graph.NodeID, 0, 256)
	for i := range unit {
		p := &unit[i]
		ids = ids[:0]
		for _, c := range p.codes {
			ids = append(ids, resolved[c])
		}
		stats.Kmers += p.total
		stats.Hits += countHits(ids)
		res := e.result(p.rec, p.total, e.aggregate(ids), opts)
		if err := rep.Write(&res); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) replayMers(unit []pending, rep *Report, opts Options, stats *Stats) error {
	resolved := make(map[string]graph.NodeID)
	for i := range unit {
		for _, m := range unit[i].mers {
			resolved[m] = graph.NPos
		}
	}
	for m := range resolved {
		resolved[m] = e.g.Node([]byte(m))
	}

	ids := make([]graph.NodeID, 0, 256)
	for i := range unit {
		p := &unit[i]
		ids = ids[:0]
		for _, m := range p.mers {
			ids = append(ids, resolved[m])
		}
		stats.Kmers += p.total
		stats.Hits += countHits(ids)
		res := e.result(p.rec, p.total, e.aggregate(ids), opts)
		if err := rep.Write(&res); err != nil {
			return err
		}
	}
	return nil
}
