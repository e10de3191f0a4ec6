package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a saved transcript as json or yaml",
		Long: `Export a saved transcript in the same document shape the web client
downloads, so the result can be imported again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}

			session, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			createdAt := session.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			record := chat.ExportRecord{
				Messages: session.Messages,
				Metadata: chat.ExportMetadata{
					CreatedAt: createdAt.Format(time.RFC3339Nano),
					ChatID:    session.ID,
				},
			}

			data, err := encodeRecord(record, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", session.ID, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func encodeRecord(record chat.ExportRecord, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(record)
	default:
		return nil, fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
}
