package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/splitter-dev/splitter/internal/id"
	"github.com/splitter-dev/splitter/internal/importer"
	"github.com/splitter-dev/splitter/internal/ledger"
	"github.com/splitter-dev/splitter/internal/model"
)

func newExpenseCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"exp"},
		Short:   "Record and inspect expenses",
	}
	cmd.AddCommand(
		newAddPooledCommand(g),
		newAddEventCommand(g),
		newAddStayCommand(g),
		newExpenseListCommand(g),
		newExpenseShowCommand(g),
		newExpenseRemoveCommand(g),
	)
	return cmd
}

// saveOptions are the flags shared by the add-* commands.
type saveOptions struct {
	id     string
	strict bool
}

func (o *saveOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.id, "id", "", "replace the expense with this id (or unique prefix)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "refuse to save when there are warnings")
}

// saveExpense resolves --id, applies --strict and saves e, printing the
// outcome and any warnings.
func saveExpense(cmd *cobra.Command, p *project, e model.Expense, opts saveOptions) error {
	l := p.ledger
	if opts.id != "" {
		existing, err := l.Expense(opts.id)
		if err != nil {
			return err
		}
		e.Head().ID = existing.Head().ID
	}

	if opts.strict {
		if warns := l.Warnings(e); len(warns) > 0 {
			printWarnings(cmd.ErrOrStderr(), warns)
			return errors.New("expense has warnings; not saved")
		}
	}

	saved, warns, err := l.SaveExpense(cmd.Context(), e)
	if err != nil {
		return err
	}
	verb := "Added"
	if opts.id != "" {
		verb = "Updated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s, %s)\n",
		verb, saved.Kind(), id.Short(saved.Head().ID), saved.Head().Name, money(model.Total(saved)))
	printWarnings(cmd.ErrOrStderr(), warns)
	return nil
}

func printWarnings(w io.Writer, warns []ledger.ValidationError) {
	for _, ve := range warns {
		fmt.Fprintf(w, "warning: %s\n", ve.Error())
	}
}

func newAddPooledCommand(g *globalFlags) *cobra.Command {
	var (
		name    string
		items   []string
		csvPath string
		format  string
		opts    saveOptions
	)
	cmd := &cobra.Command{
		Use:   "add-pooled",
		Short: "Record a pooled purchase split by item tag",
		Example: `  splitter expense add-pooled --name Groceries --item Bread:3.20:General --item Beer:12:Alcohol
  splitter expense add-pooled --name Market --csv receipt.csv --format receipt-eu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := &model.Pooled{Header: model.Header{Name: name}}
			for _, s := range items {
				item, err := parseItem(s)
				if err != nil {
					return err
				}
				e.Items = append(e.Items, item)
			}
			if csvPath != "" {
				imported, err := readReceipt(csvPath, format)
				if err != nil {
					return err
				}
				e.Items = append(e.Items, imported...)
			}
			return withProject(cmd.Context(), g, func(p *project) error {
				return saveExpense(cmd, p, e, opts)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "expense name")
	cmd.Flags().StringArrayVar(&items, "item", nil, "sub-item as name:price:tag (repeatable)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "read sub-items from a receipt CSV")
	cmd.Flags().StringVar(&format, "format", "receipt", "receipt format ("+strings.Join(importer.DefaultRegistry().Formats(), ", ")+")")
	opts.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func readReceipt(path, format string) ([]model.PooledItem, error) {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return nil, fmt.Errorf("unknown receipt format %q", format)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func newAddEventCommand(g *globalFlags) *cobra.Command {
	var (
		name   string
		price  string
		with   []string
		extras []string
		opts   saveOptions
	)
	cmd := &cobra.Command{
		Use:     "add-event",
		Short:   "Record a flat-price event shared by its participants",
		Example: `  splitter expense add-event --name Concert --price 90 --with Anna,Ben,Cleo --extra "Drinks:24:Anna,Ben"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(price)
			if err != nil {
				return err
			}
			e := &model.Event{Header: model.Header{Name: name}, Price: amount, Participants: with}
			for _, s := range extras {
				x, err := parseEventExtra(s)
				if err != nil {
					return err
				}
				e.Extras = append(e.Extras, x)
			}
			return withProject(cmd.Context(), g, func(p *project) error {
				return saveExpense(cmd, p, e, opts)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "expense name")
	cmd.Flags().StringVar(&price, "price", "0", "event price")
	cmd.Flags().StringSliceVar(&with, "with", nil, "participants")
	cmd.Flags().StringArrayVar(&extras, "extra", nil, "extra as label:price:user,user (repeatable)")
	opts.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAddStayCommand(g *globalFlags) *cobra.Command {
	var (
		name     string
		perNight string
		stays    []string
		extras   []string
		opts     saveOptions
	)
	cmd := &cobra.Command{
		Use:     "add-stay",
		Short:   "Record lodging billed per person per night",
		Example: `  splitter expense add-stay --name Cabin --per-night 25 --stay Anna:3 --stay Ben:2 --extra Cleaning:40`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseMoney(perNight)
			if err != nil {
				return err
			}
			e := &model.Accommodation{Header: model.Header{Name: name}, PricePerNight: rate}
			for _, s := range stays {
				st, err := parseStay(s)
				if err != nil {
					return err
				}
				e.Participants = append(e.Participants, st)
			}
			for _, s := range extras {
				x, err := parseExtra(s)
				if err != nil {
					return err
				}
				e.Extras = append(e.Extras, x)
			}
			return withProject(cmd.Context(), g, func(p *project) error {
				return saveExpense(cmd, p, e, opts)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "expense name")
	cmd.Flags().StringVar(&perNight, "per-night", "0", "price per person per night")
	cmd.Flags().StringArrayVar(&stays, "stay", nil, "guest as user:nights (repeatable)")
	cmd.Flags().StringArrayVar(&extras, "extra", nil, "extra as label:price (repeatable)")
	opts.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newExpenseListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List expenses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				expenses := p.ledger.Expenses()
				if len(expenses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No expenses.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tKIND\tNAME\tTOTAL\t")
				for _, e := range expenses {
					mark := ""
					if len(p.ledger.Warnings(e)) > 0 {
						mark = "!"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						id.Short(e.Head().ID), e.Kind(), e.Head().Name, money(model.Total(e)), mark)
				}
				fmt.Fprintf(tw, "\t\tTotal\t%s\t\n", money(p.ledger.GrandTotal()))
				return tw.Flush()
			})
		},
	}
}

func newExpenseShowCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an expense and how it is split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				e, err := p.ledger.Expense(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				h := e.Head()
				fmt.Fprintf(out, "%s  %s (%s)\n", h.ID, h.Name, e.Kind())
				fmt.Fprintf(out, "Total: %s\n\n", money(model.Total(e)))

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COMPONENT\tTOTAL\tSPLIT")
				for _, line := range p.ledger.Engine().Allocate(e, p.ledger.Users()) {
					label := line.Label
					if line.Tag != "" {
						label += " [" + line.Tag + "]"
					}
					shares := make([]string, len(line.Shares))
					for i, s := range line.Shares {
						shares[i] = s.User + " " + money(s.Amount)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", label, money(line.Total), strings.Join(shares, ", "))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				printWarnings(cmd.ErrOrStderr(), p.ledger.Warnings(e))
				return nil
			})
		},
	}
}

func newExpenseRemoveCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				e, err := p.ledger.DeleteExpense(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", id.Short(e.Head().ID), e.Head().Name)
				return nil
			})
		},
	}
}
