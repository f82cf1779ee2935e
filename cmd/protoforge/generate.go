package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protoforge-ai/protoforge/pkg/config"
	"github.com/protoforge-ai/protoforge/pkg/llm"
	"github.com/protoforge-ai/protoforge/pkg/models"
	"github.com/protoforge-ai/protoforge/pkg/store/sqlite"
)

func newGenerateCmd() *cobra.Command {
	var configPath string
	var conversationID string

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate or modify a prototype from a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = st.Close() }()

			ctx := cmd.Context()
			if conversationID == "" {
				conv, err := st.CreateConversation(ctx, prompt)
				if err != nil {
					return err
				}
				conversationID = conv.ID
			}

			client := llm.NewClient(cfg.Provider.URL, cfg.Provider.APIKey, cfg.Provider.Model, cfg.Provider.Timeout)
			svc := newService(cfg, client, st, nil)
			defer svc.Close()

			res, err := svc.GenerateArtifact(ctx, conversationID, prompt)
			if err != nil {
				return err
			}

			if _, err := st.AppendMessage(ctx, conversationID, models.RoleUser, prompt); err != nil {
				return err
			}

			if res.NeedsClarification() {
				if _, err := st.AppendMessage(ctx, conversationID, models.RoleAssistant, res.ClarifyingQuestion); err != nil {
					return err
				}
				fmt.Printf("Conversation: %s\n\nThe model needs more input:\n  %s\n", conversationID, res.ClarifyingQuestion)
				return nil
			}

			if _, err := st.AppendMessage(ctx, conversationID, models.RoleAssistant, res.Explanation); err != nil {
				return err
			}
			proto, err := st.SavePrototype(ctx, conversationID, res)
			if err != nil {
				return err
			}

			fmt.Printf("Conversation: %s\nPrototype:    %s\n\n%s\n", conversationID, proto.ID, res.Explanation)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "protoforge.yaml", "path to config file")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	return cmd
}
