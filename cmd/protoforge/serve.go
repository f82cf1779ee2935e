package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/protoforge-ai/protoforge/pkg/audit"
	"github.com/protoforge-ai/protoforge/pkg/config"
	"github.com/protoforge-ai/protoforge/pkg/generate"
	"github.com/protoforge-ai/protoforge/pkg/llm"
	"github.com/protoforge-ai/protoforge/pkg/server"
	"github.com/protoforge-ai/protoforge/pkg/store/sqlite"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the generation API server",
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

			var auditor *audit.Logger
			if cfg.Audit.Enabled {
				auditor, err = audit.New(cfg.DBPath, cfg.Audit.RetentionDays)
				if err != nil {
					return fmt.Errorf("init request log: %w", err)
				}
				defer func() { _ = auditor.Close() }()
			}

			client := llm.NewClient(cfg.Provider.URL, cfg.Provider.APIKey, cfg.Provider.Model, cfg.Provider.Timeout)

			svc := newService(cfg, client, st, auditor)
			svc.Start()
			defer svc.Close()

			srv := server.New(cfg, svc, st)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("starting protoforge with config: %s", configPath)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "protoforge.yaml", "path to config file")
	return cmd
}

// newService wires the generation service. auditor may be nil.
func newService(cfg *config.Config, client *llm.Client, st *sqlite.Store, auditor *audit.Logger) *generate.Service {
	var reqLog generate.RequestLogger
	if auditor != nil {
		reqLog = auditor
	}
	return generate.New(cfg, client, st, st, reqLog)
}
