package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/splitter-dev/splitter/internal/buildinfo"
	"github.com/splitter-dev/splitter/internal/logging"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "splitter",
		Short:   "Split shared trip and household expenses",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.verbose {
				logging.SetupWithLevel(slog.LevelDebug)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "splitter.yaml", "path to splitter.yaml")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(),
		newUserCommand(g),
		newTagsCommand(g),
		newExpenseCommand(g),
		newPayCommand(g),
		newPaymentsCommand(g),
		newCostsCommand(g),
		newSettleCommand(g),
		newBreakdownCommand(g),
		newExportCommand(g),
		newImportCommand(g),
		newServeCommand(g),
	)

	return rootCmd
}
