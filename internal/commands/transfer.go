package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all users, expenses and payments as one JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				data, err := p.ledger.Export()
				if err != nil {
					return err
				}
				if len(args) == 0 || args[0] == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(args[0], append(data, '\n'), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newImportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace stored collections with those in an exported document",
		Long: "Replace stored collections with those in an exported document. " +
			"Collections missing from the document are left as they are. Use - to read stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			return withProject(cmd.Context(), g, func(p *project) error {
				if err := p.ledger.Import(cmd.Context(), data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users, %d expenses, %d payments\n",
					len(p.ledger.Users()), len(p.ledger.Expenses()), len(p.ledger.Payments()))
				return nil
			})
		},
	}
}
