package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/splitter-dev/splitter/internal/id"
	"github.com/splitter-dev/splitter/internal/ledger"
	"github.com/splitter-dev/splitter/internal/model"
)

func newPayCommand(g *globalFlags) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:     "pay <user> <amount>",
		Short:   "Record money a user has laid out for the group",
		Example: `  splitter pay Anna 120.50 --note "supermarket run"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(args[1])
			if err != nil {
				return err
			}
			return withProject(cmd.Context(), g, func(p *project) error {
				pm, err := p.ledger.AddPayment(cmd.Context(), args[0], amount, note)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s paid by %s (%s)\n", money(pm.Amount), pm.User, id.Short(pm.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "what the money was for")
	return cmd
}

func newPaymentsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List and remove recorded payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				return listPayments(cmd, p.ledger.Payments())
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a payment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				pm, err := findPayment(p.ledger.Payments(), args[0])
				if err != nil {
					return err
				}
				if err := p.ledger.DeletePayment(cmd.Context(), pm.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed payment %s (%s by %s)\n", id.Short(pm.ID), money(pm.Amount), pm.User)
				return nil
			})
		},
	})
	return cmd
}

func listPayments(cmd *cobra.Command, payments []model.Payment) error {
	if len(payments) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No payments.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tAMOUNT\tDATE\tNOTE")
	for _, pm := range payments {
		date := ""
		if !pm.CreatedAt.IsZero() {
			date = pm.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id.Short(pm.ID), pm.User, money(pm.Amount), date, pm.Note)
	}
	return tw.Flush()
}

func findPayment(payments []model.Payment, ref string) (model.Payment, error) {
	var found []model.Payment
	for _, pm := range payments {
		if pm.ID == ref {
			return pm, nil
		}
		if id.Match(pm.ID, ref) {
			found = append(found, pm)
		}
	}
	switch len(found) {
	case 0:
		return model.Payment{}, fmt.Errorf("%w: %s", ledger.ErrPaymentNotFound, ref)
	case 1:
		return found[0], nil
	}
	return model.Payment{}, fmt.Errorf("%w: %s", ledger.ErrAmbiguousID, ref)
}
