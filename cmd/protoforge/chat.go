package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protoforge-ai/protoforge/pkg/config"
	"github.com/protoforge-ai/protoforge/pkg/llm"
	"github.com/protoforge-ai/protoforge/pkg/models"
	"github.com/protoforge-ai/protoforge/pkg/store/sqlite"
)

func newChatCmd() *cobra.Command {
	var configPath string
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Ask a conversational question about a prototype",
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

			reply, err := svc.GenerateChatReply(ctx, conversationID, prompt)
			if err != nil {
				return err
			}

			if _, err := st.AppendMessage(ctx, conversationID, models.RoleUser, prompt); err != nil {
				return err
			}
			if _, err := st.AppendMessage(ctx, conversationID, models.RoleAssistant, reply); err != nil {
				return err
			}

			fmt.Printf("Conversation: %s\n\n%s\n", conversationID, reply)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "protoforge.yaml", "path to config file")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	return cmd
}
