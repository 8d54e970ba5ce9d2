package cli

import (
	"github.com/spf13/cobra"

	"github.com/seqgraph/seqgraph/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "seqgraph",
		Short: "Seqgraph indexes sequence collections as annotated de Bruijn graphs",
		Long: `Seqgraph indexes large collections of DNA sequences as a de Bruijn graph
over fixed-length windows, attaches source labels to the graph's nodes, and
answers membership and label queries against the result.

A typical session builds an index, annotates it, and queries it:

  seqgraph build -k 20 --graph succinct -o index genomes.fa
  seqgraph annotate -i index.dbg --anno-header -o labels genomes.fa
  seqgraph query -i index.dbg -a labels.row.annodbg reads.fa`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/seqgraph/config.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.annotateCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
