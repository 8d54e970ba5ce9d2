package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/query"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// queryOpts holds the command-line flags for the query command.
type queryOpts struct {
	graphPath   string  // graph index
	annoPath    string  // annotation matrix
	countLabels bool    // per-label window counts instead of membership
	fast        bool    // batched executor
	discovery   float64 // minimum fraction of windows per reported label
	topLabels   int     // cap on count-mode entries, 0 keeps all
	output      string  // report path, stdout if empty
}

// queryCommand creates the query command.
func (c *CLI) queryCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "query [flags] <queries.fa...>",
		Short: "Resolve query sequences against a graph and its annotation",
		Long: `Resolve query sequences against a graph and its annotation.

Each query sequence is decomposed into windows, the windows are looked up in
the graph, and the labels of the nodes hit are reported one line per input
sequence, in input order. --fast groups sequences into batches and resolves
each distinct window once per batch; its output is byte-identical to the
standard mode.

Examples:
  seqgraph query -i index.dbg -a labels.row.annodbg reads.fa
  seqgraph query --fast --count-labels -i index.dbg -a labels.row.annodbg reads.fa`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graphPath, "index", "i", "", "graph index to query")
	cmd.Flags().StringVarP(&opts.annoPath, "annotation", "a", "", "annotation matrix for the index")
	cmd.Flags().BoolVar(&opts.countLabels, "count-labels", false, "report per-label window counts")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "use the batched executor")
	cmd.Flags().Float64Var(&opts.discovery, "discovery-fraction", 0, "minimum fraction of windows a label must hit to be reported")
	cmd.Flags().IntVar(&opts.topLabels, "num-top-labels", 0, "cap count-mode entries per sequence (0 keeps all)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report file (stdout if empty)")
	cobra.CheckErr(cmd.MarkFlagRequired("index"))
	cobra.CheckErr(cmd.MarkFlagRequired("annotation"))

	return cmd
}

// runQuery loads the index pair and streams the report.
func (c *CLI) runQuery(ctx context.Context, inputs []string, opts queryOpts) error {
	if err := errors.ValidateDiscoveryFraction(opts.discovery); err != nil {
		return err
	}

	idx, err := loadIndex(ctx, opts.graphPath)
	if err != nil {
		return err
	}
	m, err := loadMatrix(ctx, opts.annoPath)
	if err != nil {
		return err
	}
	engine, err := query.New(idx, m)
	if err != nil {
		return err
	}

	corpus, err := seqio.Open(inputs...)
	if err != nil {
		return err
	}
	defer corpus.Close()

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	stats, err := engine.Run(ctx, corpus, out, query.Options{
		CountLabels:       opts.countLabels,
		Fast:              opts.fast,
		DiscoveryFraction: opts.discovery,
		NumTopLabels:      opts.topLabels,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Answered %s queries, %s of %s windows hit",
		count(stats.Records), count(stats.Hits), count(stats.Kmers)))
	if es := corpus.ErrorSummary(); es.Total() > 0 {
		logger.Warnf("Skipped %d records (%s)", es.Total(), es)
	}
	return nil
}
