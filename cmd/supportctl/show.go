package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/shopease/backend/internal/service/transcript"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}

			session, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(session.Title))
			if !session.CreatedAt.IsZero() {
				fmt.Fprintln(out, dateStyle.Render("saved "+session.CreatedAt.Local().Format(time.DateTime)))
			}
			fmt.Fprintln(out, transcript.Preview(session.Messages))
			fmt.Fprintln(out)
			for _, msg := range session.Messages {
				fmt.Fprintf(out, "%s %s\n", roleLabel(msg.Role), msg.Content)
			}
			return nil
		},
	}
}
