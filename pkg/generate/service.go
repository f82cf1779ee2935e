// Package generate wraps calls to the generation API behind the response
// cache: assemble context, consult the cache, call upstream on a miss,
// validate, store, return.
package generate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/protoforge-ai/protoforge/pkg/assembler"
	"github.com/protoforge-ai/protoforge/pkg/cache"
	"github.com/protoforge-ai/protoforge/pkg/config"
	"github.com/protoforge-ai/protoforge/pkg/llm"
	"github.com/protoforge-ai/protoforge/pkg/models"
)

// Output-token budgets per request class. Code generation carries whole
// documents; chat replies do not.
const (
	generationMaxTokens = 4096
	chatMaxTokens       = 1024
)

// CompletionClient is the upstream generation API.
type CompletionClient interface {
	Complete(ctx context.Context, messages []models.ChatMessage, opts llm.CompletionOptions) (string, error)
	Model() string
}

// HistorySource provides the bounded trailing window of a conversation.
type HistorySource interface {
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
}

// ArtifactSource provides the current artifact snapshot of a conversation,
// or "" when none exists.
type ArtifactSource interface {
	CurrentArtifact(ctx context.Context, conversationID string) (string, error)
}

// RequestLogger records handled generation requests. May be nil.
type RequestLogger interface {
	Log(ctx context.Context, entry models.RequestEntry) error
}

// Service is the caller-facing generation surface.
type Service struct {
	cfg       *config.Config
	client    CompletionClient
	history   HistorySource
	artifacts ArtifactSource
	auditor   RequestLogger

	genCache  *cache.Cache[models.GenerationResult]
	chatCache *cache.Cache[string]
}

// New creates a Service. The caches are owned by the Service; call Start
// and Close around its useful life.
func New(cfg *config.Config, client CompletionClient, history HistorySource, artifacts ArtifactSource, auditor RequestLogger) *Service {
	s := &Service{
		cfg:       cfg,
		client:    client,
		history:   history,
		artifacts: artifacts,
		auditor:   auditor,
	}
	if cfg.Cache.Enabled {
		s.genCache = cache.New[models.GenerationResult](cfg.Cache.SweepInterval)
		s.chatCache = cache.New[string](cfg.Cache.SweepInterval)
	}
	return s
}

// Start launches the background cache sweeps.
func (s *Service) Start() {
	if s.genCache != nil {
		s.genCache.Start()
	}
	if s.chatCache != nil {
		s.chatCache.Start()
	}
}

// Close stops the background cache sweeps.
func (s *Service) Close() {
	if s.genCache != nil {
		s.genCache.Stop()
	}
	if s.chatCache != nil {
		s.chatCache.Stop()
	}
}

// ClearCaches drops all cached responses.
func (s *Service) ClearCaches() {
	if s.genCache != nil {
		s.genCache.Clear()
	}
	if s.chatCache != nil {
		s.chatCache.Clear()
	}
}

// CacheStats returns metrics for the generation and chat caches.
func (s *Service) CacheStats() (gen, chat models.CacheStats) {
	if s.genCache != nil {
		gen = s.genCache.Stats()
	}
	if s.chatCache != nil {
		chat = s.chatCache.Stats()
	}
	return gen, chat
}

// GenerateArtifact produces an artifact for the prompt in the context of
// the given conversation. Fresh generation when the conversation has no
// current artifact, targeted modification otherwise.
func (s *Service) GenerateArtifact(ctx context.Context, conversationID, prompt string) (models.GenerationResult, error) {
	var zero models.GenerationResult
	if s.cfg.Provider.APIKey == "" {
		return zero, &ConfigurationError{Reason: "no generation API credential configured"}
	}

	history, err := s.history.RecentTurns(ctx, conversationID, assembler.HistoryWindow)
	if err != nil {
		return zero, fmt.Errorf("load conversation history: %w", err)
	}
	markup, err := s.artifacts.CurrentArtifact(ctx, conversationID)
	if err != nil {
		return zero, fmt.Errorf("load current artifact: %w", err)
	}

	req := assembler.NewGenerationRequest(prompt, history, markup)
	key := req.Fingerprint()

	if s.genCache != nil {
		if res, ok := s.genCache.Lookup(key); ok {
			s.logRequest(conversationID, "generation", true, 0)
			return res, nil
		}
	}

	start := time.Now()
	raw, err := s.client.Complete(ctx, req.Messages(), llm.CompletionOptions{
		Temperature:  req.Temperature(),
		MaxTokens:    generationMaxTokens,
		JSONResponse: true,
	})
	if err != nil {
		return zero, &UpstreamError{Op: "generate artifact", Err: err}
	}

	res, err := models.ParseGenerationResult(raw)
	if err != nil {
		return zero, &UpstreamError{Op: "generate artifact", Err: err}
	}

	if s.genCache != nil {
		s.genCache.Store(key, res, s.cfg.Cache.GenerationTTL)
	}
	s.logRequest(conversationID, "generation", false, time.Since(start).Milliseconds())
	return res, nil
}

// GenerateChatReply produces a conversational reply for the prompt in the
// context of the given conversation.
func (s *Service) GenerateChatReply(ctx context.Context, conversationID, prompt string) (string, error) {
	if s.cfg.Provider.APIKey == "" {
		return "", &ConfigurationError{Reason: "no generation API credential configured"}
	}

	history, err := s.history.RecentTurns(ctx, conversationID, assembler.HistoryWindow)
	if err != nil {
		return "", fmt.Errorf("load conversation history: %w", err)
	}

	req := assembler.ChatRequest{Prompt: prompt, History: history}
	key := req.Fingerprint()

	if s.chatCache != nil {
		if reply, ok := s.chatCache.Lookup(key); ok {
			s.logRequest(conversationID, "chat", true, 0)
			return reply, nil
		}
	}

	start := time.Now()
	reply, err := s.client.Complete(ctx, req.Messages(), llm.CompletionOptions{
		Temperature: req.Temperature(),
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", &UpstreamError{Op: "generate chat reply", Err: err}
	}

	if s.chatCache != nil {
		s.chatCache.Store(key, reply, s.cfg.Cache.ChatTTL)
	}
	s.logRequest(conversationID, "chat", false, time.Since(start).Milliseconds())
	return reply, nil
}

func (s *Service) logRequest(conversationID, kind string, cacheHit bool, latencyMs int64) {
	if s.auditor == nil {
		return
	}
	entry := models.RequestEntry{
		ConversationID: conversationID,
		Kind:           kind,
		Model:          s.client.Model(),
		CacheHit:       cacheHit,
		LatencyMs:      latencyMs,
		CreatedAt:      time.Now().UTC(),
	}
	go func() {
		if err := s.auditor.Log(context.Background(), entry); err != nil {
			log.Printf("request log error: %v", err)
		}
	}()
}
