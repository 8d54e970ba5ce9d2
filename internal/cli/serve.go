package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/internal/server"
)

// defaultServeAddr is the default listen address for the serve command.
const defaultServeAddr = ":5555"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	graphPath string // graph index
	annoPath  string // annotation matrix
	addr      string // listen address
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultServeAddr}

	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Expose the query engine over HTTP",
		Long: `Expose the query engine over HTTP.

The server loads the graph and annotation once and answers queries until
interrupted:

  POST /search   query sequences (FASTA body, or JSON with options)
  GET  /stats    index and annotation statistics
  GET  /healthz  liveness probe

Example:
  seqgraph serve -i index.dbg -a labels.row.annodbg --addr :5555`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.config.apply(cmd, map[string]func(){
				"addr": func() { opts.addr = c.config.Addr },
			})
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graphPath, "index", "i", "", "graph index to serve")
	cmd.Flags().StringVarP(&opts.annoPath, "annotation", "a", "", "annotation matrix for the index")
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cobra.CheckErr(cmd.MarkFlagRequired("index"))
	cobra.CheckErr(cmd.MarkFlagRequired("annotation"))

	return cmd
}

// runServe loads the index pair and serves until the context is
// cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	idx, err := loadIndex(ctx, opts.graphPath)
	if err != nil {
		return err
	}
	m, err := loadMatrix(ctx, opts.annoPath)
	if err != nil {
		return err
	}

	srv, err := server.New(idx, m, server.Options{
		Addr:   opts.addr,
		Logger: loggerFromContext(ctx),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
