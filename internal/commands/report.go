package commands

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/splitter-dev/splitter/internal/calc"
	"github.com/splitter-dev/splitter/internal/id"
	"github.com/splitter-dev/splitter/internal/model"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func newCostsCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "costs",
		Short: "Show what each user owes, has paid and their balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				l := p.ledger
				costs, paid, balances := l.Costs(), l.PaidByUser(), l.Balances()

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "USER\tOWES\tPAID\tBALANCE\t")
				for _, name := range balanceNames(l.Users(), balances) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", name, money(costs[name]), money(paid[name]), money(balances[name]))
				}
				fmt.Fprintf(tw, "Total\t%s\t%s\t\t\n", money(calc.Sum(costs)), money(calc.Sum(paid)))
				if err := tw.Flush(); err != nil {
					return err
				}
				gt := l.GrandTotal()
				if unassigned := gt.Sub(calc.Sum(costs)); unassigned.Abs().GreaterThan(calc.Tolerance) {
					fmt.Fprintf(cmd.OutOrStdout(), "\n%s of %s in expenses is not assigned to anyone.\n",
						money(unassigned), money(gt))
				}
				return nil
			})
		},
	}
}

// balanceNames lists roster users in roster order, then anyone else who
// appears in balances (payments from removed users) sorted by name.
func balanceNames(users []model.User, balances map[string]decimal.Decimal) []string {
	names := model.UserNames(users)
	var extra []string
	for name := range balances {
		if model.FindUser(users, name) < 0 {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func newSettleCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "List the transfers that settle all balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				return printTransfers(cmd.OutOrStdout(), p.ledger.Settlements())
			})
		},
	}
}

func printTransfers(w io.Writer, transfers []calc.Transfer) error {
	if len(transfers) == 0 {
		_, err := fmt.Fprintln(w, "All settled.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range transfers {
		fmt.Fprintf(tw, "%s\tpays\t%s\t%s\n", t.From, t.To, money(t.Amount))
	}
	return tw.Flush()
}

func newBreakdownCommand(g *globalFlags) *cobra.Command {
	var expenseRef string
	cmd := &cobra.Command{
		Use:   "breakdown <user>",
		Short: "Explain what a user owes, per expense or for one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				if expenseRef != "" {
					b, err := p.ledger.Breakdown(expenseRef, args[0])
					if err != nil {
						return err
					}
					return printBreakdown(cmd.OutOrStdout(), b)
				}
				s, err := p.ledger.Summary(args[0])
				if err != nil {
					return err
				}
				return printSummary(cmd.OutOrStdout(), s)
			})
		},
	}
	cmd.Flags().StringVarP(&expenseRef, "expense", "e", "", "limit to one expense (id or prefix)")
	return cmd
}

func printBreakdown(w io.Writer, b calc.Breakdown) error {
	fmt.Fprintf(w, "%s (%s)\n", b.Name, b.Type)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeItems(tw, b.Items)
	fmt.Fprintf(tw, "  Total\t\t%s\n", money(b.Total))
	return tw.Flush()
}

func writeItems(tw *tabwriter.Writer, items []calc.BreakdownItem) {
	for _, it := range items {
		detail := fmt.Sprintf("%s / %d", money(it.Total), it.Participants)
		switch {
		case it.Nights > 0:
			detail = fmt.Sprintf("%d nights", it.Nights)
		case it.Tag != "":
			detail += " [" + it.Tag + "]"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", it.Name, detail, money(it.UserShare))
	}
}

func printSummary(w io.Writer, s calc.Summary) error {
	fmt.Fprintf(w, "%s owes %s\n", s.User, money(s.Total))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range []struct {
		title string
		cat   calc.Category
	}{
		{"Pooled", s.Pooled},
		{"Events", s.Events},
		{"Accommodations", s.Accommodations},
	} {
		if c.cat.Count == 0 {
			continue
		}
		fmt.Fprintf(tw, "\n%s (%d)\t\t%s\n", c.title, c.cat.Count, money(c.cat.Amount))
		for _, d := range c.cat.Items {
			fmt.Fprintf(tw, "%s %s\t\t%s\n", id.Short(d.ID), d.Name, money(d.UserAmount))
			writeItems(tw, d.Items)
		}
	}
	return tw.Flush()
}
