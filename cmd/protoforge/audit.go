package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protoforge-ai/protoforge/pkg/audit"
	"github.com/protoforge-ai/protoforge/pkg/config"
)

func newAuditCmd() *cobra.Command {
	var configPath string
	var conversationID string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent generation API requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := audit.New(cfg.DBPath, 0)
			if err != nil {
				return fmt.Errorf("open request log: %w", err)
			}
			defer func() { _ = logger.Close() }()

			entries, err := logger.Recent(cmd.Context(), conversationID, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No logged requests.")
				return nil
			}

			for _, e := range entries {
				cacheMark := "miss"
				if e.CacheHit {
					cacheMark = "hit "
				}
				fmt.Printf("%s  %-10s  cache=%s  %5dms  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, cacheMark, e.LatencyMs, e.ConversationID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "protoforge.yaml", "path to config file")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "filter by conversation")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")
	return cmd
}
