package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/shopease/backend/internal/service/session"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store an exported transcript (json or yaml)",
		Long: `Store an exported transcript. The record keeps its metadata.chat_id when
present, otherwise a new id is assigned. The title is taken from the first
user message.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if ext := strings.ToLower(filepath.Ext(args[0])); ext == ".yaml" || ext == ".yml" {
				if data, err = yamlToJSON(data); err != nil {
					return fmt.Errorf("failed to parse %s: %w", args[0], err)
				}
			}

			store, err := opts.store()
			if err != nil {
				return err
			}

			// 复用会话控制器的校验逻辑，再按正常保存流程落盘
			ctrl := session.NewController(store)
			if err := ctrl.ImportFrom(data); err != nil {
				return err
			}
			saved, err := ctrl.Save(cmd.Context(), "")
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", saved.ID, saved.Title)
			return nil
		},
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
