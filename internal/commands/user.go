package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUserCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the roster",
	}
	cmd.AddCommand(
		newUserAddCommand(g),
		newUserRenameCommand(g),
		newUserTagCommand(g),
		newUserRemoveCommand(g),
		newUserListCommand(g),
	)
	return cmd
}

func newUserAddCommand(g *globalFlags) *cobra.Command {
	var userTags []string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				u, err := p.ledger.AddUser(cmd.Context(), args[0], userTags)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s%s\n", u.Name, tagSuffix(u.Tags))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&userTags, "tag", "t", nil, "tag to assign (repeatable)")
	return cmd
}

func newUserRenameCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a user",
		Long:  "Rename a user. Expenses that list the old name keep it and no longer count towards the user.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				if err := p.ledger.RenameUser(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				newName := strings.TrimSpace(args[1])
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], newName)
				return nil
			})
		},
	}
}

func newUserTagCommand(g *globalFlags) *cobra.Command {
	var userTags []string
	cmd := &cobra.Command{
		Use:   "tag <name>",
		Short: "Replace a user's tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				if err := p.ledger.SetUserTags(cmd.Context(), args[0], userTags); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s%s\n", args[0], tagSuffix(userTags))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&userTags, "tag", "t", nil, "tag to assign (repeatable; omit to clear)")
	return cmd
}

func newUserRemoveCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				if err := p.ledger.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newUserListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), g, func(p *project) error {
				users := p.ledger.Users()
				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No users.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tTAGS")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\n", u.Name, strings.Join(u.Tags, ", "))
				}
				return tw.Flush()
			})
		},
	}
}

func tagSuffix(ts []string) string {
	if len(ts) == 0 {
		return ""
	}
	return " [" + strings.Join(ts, ", ") + "]"
}
