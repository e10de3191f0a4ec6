package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}

			listing, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(listing.Sessions) == 0 {
				fmt.Fprintln(out, "No saved sessions.")
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, headerStyle.Render("ID")+"\t"+headerStyle.Render("CREATED")+"\t"+headerStyle.Render("TITLE"))
				for _, s := range listing.Sessions {
					created := "-"
					if !s.CreatedAt.IsZero() {
						created = s.CreatedAt.Local().Format("2006-01-02 15:04")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, dateStyle.Render(created), s.Title)
				}
				tw.Flush()
			}

			for _, e := range listing.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("warning: %v", e)))
			}
			return nil
		},
	}
}
