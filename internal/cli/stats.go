package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/graph"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var annoPaths []string

	cmd := &cobra.Command{
		Use:   "stats [flags] [graph...]",
		Short: "Print index and annotation statistics",
		Long: `Print index and annotation statistics.

Graph arguments and -a annotation arguments may be combined; each artifact
gets its own block. The field lines are plain "name: value" pairs, so the
output is easy to consume from scripts.

Examples:
  seqgraph stats index.dbg
  seqgraph stats -a labels.row.annodbg
  seqgraph stats index.dbg -a labels.row.annodbg`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(annoPaths) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to inspect: give a graph path or -a")
			}
			return c.runStats(cmd.Context(), args, annoPaths)
		},
	}

	cmd.Flags().StringArrayVarP(&annoPaths, "annotation", "a", nil, "annotation matrix to inspect (repeatable)")

	return cmd
}

// runStats prints one statistics block per artifact.
func (c *CLI) runStats(ctx context.Context, graphs, annos []string) error {
	for _, path := range graphs {
		idx, err := loadIndex(ctx, path)
		if err != nil {
			return err
		}
		printBlock(graphStats(path, idx))
	}
	for _, path := range annos {
		m, err := loadMatrix(ctx, path)
		if err != nil {
			return err
		}
		printBlock(annoStats(path, m))
	}
	return nil
}

func printBlock(lines []string) {
	for _, line := range lines {
		fmt.Println(line)
	}
}

// graphStats formats the statistics block for a graph index: a
// two-line header followed by the field lines.
func graphStats(path string, idx *graph.Index) []string {
	return []string{
		fmt.Sprintf("Statistics for graph %s", path),
		strings.Repeat("=", 36),
		fmt.Sprintf("k: %d", idx.Graph.K()),
		fmt.Sprintf("nodes (k): %d", idx.Graph.NumNodes()),
		fmt.Sprintf("canonical mode: %s", yesNo(idx.Graph.Canonical())),
	}
}

// annoStats formats the statistics block for an annotation matrix.
func annoStats(path string, m annotation.Matrix) []string {
	return []string{
		fmt.Sprintf("Statistics for annotation %s", path),
		strings.Repeat("=", 36),
		fmt.Sprintf("labels:  %d", m.NumLabels()),
		fmt.Sprintf("objects: %d", m.NumObjects()),
		fmt.Sprintf("density: %e", m.Density()),
		fmt.Sprintf("representation: %s", m.Kind()),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
