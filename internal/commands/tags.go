package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagsCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tag registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				reg := p.ledger.Tags()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TAG\tUSERS\tITEMS")
				for _, o := range reg.All() {
					name := o.Name
					if name == reg.General() {
						name += " (everyone)"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", name, yesNo(o.ForUsers), yesNo(o.ForItems))
				}
				return tw.Flush()
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
