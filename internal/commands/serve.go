package commands

import (
	"github.com/spf13/cobra"

	"github.com/splitter-dev/splitter/internal/api"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				if addr == "" {
					addr = p.cfg.Server.Addr
				}
				return api.NewServer(p.ledger).ListenAndServe(cmd.Context(), addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
