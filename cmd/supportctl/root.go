package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/shopease/backend/internal/config"
	"github.com/zhouzirui/shopease/backend/internal/service/transcript"
)

type rootOptions struct {
	dir string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "supportctl",
		Short: "Manage saved ShopEase support transcripts",
		Long: `Inspect and maintain the chat transcripts saved by the support backend.

Quick Start:
  supportctl list                         # List saved sessions
  supportctl show <session-id>            # Print a transcript
  supportctl export <session-id> -f yaml  # Export a transcript
  supportctl import chat.json             # Store an exported transcript`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env 缺失时使用系统环境变量
			_ = godotenv.Load()
			if !cmd.Flags().Changed("dir") {
				opts.dir = config.LoadStorageConfig().TranscriptDir
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.dir, "dir", "chat_history", "Transcript directory (defaults to TRANSCRIPT_DIR)")

	root.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
	)
	return root
}

func (o *rootOptions) store() (*transcript.Store, error) {
	return transcript.NewStore(o.dir)
}
