package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/pipeline"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	k         int     // window length in bases
	variant   string  // graph representation name
	canonical bool    // collapse both strands onto one node
	parallel  int     // scan worker count, 0 = one per CPU
	bloomFPP  float64 // Bloom prefilter false positive rate, 0 disables
	output    string  // output base path, first input if empty
	quiet     bool    // suppress the live record counter
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{k: pipeline.DefaultK, variant: string(pipeline.DefaultVariant)}

	cmd := &cobra.Command{
		Use:   "build [flags] <corpus.fa...>",
		Short: "Index a sequence corpus as a de Bruijn graph",
		Long: `Index a sequence corpus as a de Bruijn graph over fixed-length windows.

Input files may be FASTA or FASTQ, plain or gzip-compressed, and are read in
the order given. The output file name gets the representation's suffix
(.dbg, .bitmapdbg, .orhashdbg, or .hashstrdbg) appended automatically.

Examples:
  seqgraph build -k 20 -o index genomes.fa
  seqgraph build --graph bitmap --canonical -p 8 -o index a.fa b.fa.gz
  seqgraph build --bloom-fpp 0.01 -o index genomes.fa`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.config.apply(cmd, map[string]func(){
				"kmer-length": func() { opts.k = c.config.KmerLength },
				"graph":       func() { opts.variant = c.config.Graph },
				"canonical":   func() { opts.canonical = c.config.Canonical },
				"parallel":    func() { opts.parallel = c.config.Parallel },
				"bloom-fpp":   func() { opts.bloomFPP = c.config.BloomFPP },
			})
			return c.runBuild(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.k, "kmer-length", "k", opts.k, "window length in bases")
	cmd.Flags().StringVar(&opts.variant, "graph", opts.variant, "representation: succinct, bitmap, hash, hashstr")
	cmd.Flags().BoolVar(&opts.canonical, "canonical", false, "collapse both strands onto one node")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "scan workers (default one per CPU)")
	cmd.Flags().Float64Var(&opts.bloomFPP, "bloom-fpp", 0, "attach a Bloom prefilter with this false positive rate")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default derived from first input)")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "suppress the live record counter")

	return cmd
}

// runBuild scans the corpus, builds the graph, and persists it.
func (c *CLI) runBuild(ctx context.Context, inputs []string, opts buildOpts) error {
	corpus, err := seqio.Open(inputs...)
	if err != nil {
		return err
	}
	defer corpus.Close()

	idx, stats, err := pipeline.BuildGraph(ctx, corpus, pipeline.Options{
		K:         opts.k,
		Variant:   graph.Tag(opts.variant),
		Canonical: opts.canonical,
		Workers:   opts.parallel,
		BloomFPP:  opts.bloomFPP,
		Logger:    loggerFromContext(ctx),
		Progress:  !opts.quiet,
	})
	if err != nil {
		return err
	}

	path, err := graph.Save(idx, outputBase(opts.output, inputs[0]))
	if err != nil {
		return err
	}

	printSuccess("Built %s graph: %s nodes from %s records",
		idx.Graph.Tag(), count(idx.Graph.NumNodes()), count(stats.Records))
	if es := corpus.ErrorSummary(); es.Total() > 0 {
		printWarning("Skipped %s records (%s)", count(es.Total()), es)
	}
	printDetail("%s bases, %s windows in %s",
		count(stats.Bases), count(stats.Kmers), stats.Elapsed.Round(time.Millisecond))
	printFile(path)
	return nil
}

// outputBase resolves the persistence base path: the explicit output
// if given, otherwise the first input with its extension dropped.
func outputBase(output, firstInput string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(firstInput, filepath.Ext(firstInput))
}
