package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/render"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	graphPath string // graph index
	annoPath  string // optional annotation matrix for node labels
	radius    int    // edge hops from the seed
	maxNodes  int    // neighborhood size cap
	svg       bool   // render SVG instead of DOT source
	output    string // output path, stdout if empty
}

// drawCommand creates the draw command.
func (c *CLI) drawCommand() *cobra.Command {
	opts := drawOpts{radius: render.DefaultRadius, maxNodes: render.DefaultMaxNodes}

	cmd := &cobra.Command{
		Use:   "draw [flags] <window>",
		Short: "Export a seed window's neighborhood as DOT or SVG",
		Long: `Export the neighborhood of a seed window as a Graphviz diagram.

The seed window must be present in the graph. The walk follows outgoing
edges up to --radius hops and stops early at --max-nodes. With -a, each
node's box also lists its annotation labels.

Examples:
  seqgraph draw -i index.dbg ACGTACGTACGTACGTACGT
  seqgraph draw -i index.dbg -a labels.row.annodbg --svg -o hood.svg ACGTACGTACGTACGTACGT`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDraw(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graphPath, "index", "i", "", "graph index to draw from")
	cmd.Flags().StringVarP(&opts.annoPath, "annotation", "a", "", "annotation matrix for node labels")
	cmd.Flags().IntVar(&opts.radius, "radius", opts.radius, "edge hops to follow from the seed")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "neighborhood size cap")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG instead of DOT source")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cobra.CheckErr(cmd.MarkFlagRequired("index"))

	return cmd
}

// runDraw renders the neighborhood and writes it out.
func (c *CLI) runDraw(ctx context.Context, seed string, opts drawOpts) error {
	idx, err := loadIndex(ctx, opts.graphPath)
	if err != nil {
		return err
	}

	var labels annotation.Matrix
	if opts.annoPath != "" {
		if labels, err = loadMatrix(ctx, opts.annoPath); err != nil {
			return err
		}
	}

	dot, err := render.NeighborhoodDOT(idx.Graph, []byte(seed), render.Options{
		Radius:   opts.radius,
		MaxNodes: opts.maxNodes,
		Labels:   labels,
	})
	if err != nil {
		return err
	}

	payload := []byte(dot)
	if opts.svg {
		if payload, err = render.RenderSVG(dot); err != nil {
			return err
		}
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(payload); err != nil {
		return err
	}

	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}
