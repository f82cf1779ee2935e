package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protoforge-ai/protoforge/pkg/config"
	"github.com/protoforge-ai/protoforge/pkg/store/sqlite"
)

func newConversationsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List stored conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = st.Close() }()

			convs, err := st.ListConversations(cmd.Context())
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Println("No conversations.")
				return nil
			}

			for _, c := range convs {
				fmt.Printf("%s  %s  %s\n", c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "protoforge.yaml", "path to config file")
	return cmd
}
