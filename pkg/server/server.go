// Package server exposes the two caller-facing generation operations over
// HTTP for the chat UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/protoforge-ai/protoforge/pkg/config"
	"github.com/protoforge-ai/protoforge/pkg/generate"
	"github.com/protoforge-ai/protoforge/pkg/models"
)

// Generator is the generation service surface the handlers invoke.
type Generator interface {
	GenerateArtifact(ctx context.Context, conversationID, prompt string) (models.GenerationResult, error)
	GenerateChatReply(ctx context.Context, conversationID, prompt string) (string, error)
}

// Store persists conversations, turns, and prototype revisions.
type Store interface {
	CreateConversation(ctx context.Context, title string) (models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, role, content string) (models.StoredMessage, error)
	SavePrototype(ctx context.Context, conversationID string, res models.GenerationResult) (models.Prototype, error)
}

// Server handles the generation API.
type Server struct {
	cfg   *config.Config
	gen   Generator
	store Store
	mux   *http.ServeMux
}

// New creates a Server wired with its dependencies.
func New(cfg *config.Config, gen Generator, store Store) *Server {
	s := &Server{
		cfg:   cfg,
		gen:   gen,
		store: store,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/chat", s.handleChat)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("protoforge listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

type generateRequest struct {
	ConversationID string `json:"conversation_id"`
	Prompt         string `json:"prompt"`
}

type generateResponse struct {
	ConversationID string                  `json:"conversation_id"`
	PrototypeID    string                  `json:"prototype_id,omitempty"`
	Result         models.GenerationResult `json:"result"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	convID, ok := s.resolveConversation(w, r, req)
	if !ok {
		return
	}

	res, err := s.gen.GenerateArtifact(r.Context(), convID, req.Prompt)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	// Persist only after success so a failed request leaves the
	// conversation unchanged and the user can retry the same prompt.
	if _, err := s.store.AppendMessage(r.Context(), convID, models.RoleUser, req.Prompt); err != nil {
		log.Printf("persist user turn: %v", err)
	}
	assistantTurn := res.Explanation
	if res.NeedsClarification() {
		assistantTurn = res.ClarifyingQuestion
	}
	if _, err := s.store.AppendMessage(r.Context(), convID, models.RoleAssistant, assistantTurn); err != nil {
		log.Printf("persist assistant turn: %v", err)
	}

	out := generateResponse{ConversationID: convID, Result: res}
	if res.Markup != "" {
		proto, err := s.store.SavePrototype(r.Context(), convID, res)
		if err != nil {
			log.Printf("persist prototype: %v", err)
		} else {
			out.PrototypeID = proto.ID
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	convID, ok := s.resolveConversation(w, r, req)
	if !ok {
		return
	}

	reply, err := s.gen.GenerateChatReply(r.Context(), convID, req.Prompt)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	if _, err := s.store.AppendMessage(r.Context(), convID, models.RoleUser, req.Prompt); err != nil {
		log.Printf("persist user turn: %v", err)
	}
	if _, err := s.store.AppendMessage(r.Context(), convID, models.RoleAssistant, reply); err != nil {
		log.Printf("persist assistant turn: %v", err)
	}

	writeJSON(w, http.StatusOK, chatResponse{ConversationID: convID, Reply: reply})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (generateRequest, bool) {
	var req generateRequest
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Prompt == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return req, false
	}
	return req, true
}

// resolveConversation returns the request's conversation ID, creating a
// new conversation titled after the prompt when none was supplied.
func (s *Server) resolveConversation(w http.ResponseWriter, r *http.Request, req generateRequest) (string, bool) {
	if req.ConversationID != "" {
		return req.ConversationID, true
	}
	conv, err := s.store.CreateConversation(r.Context(), titleFromPrompt(req.Prompt))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "create conversation failed")
		return "", false
	}
	return conv.ID, true
}

func titleFromPrompt(prompt string) string {
	const max = 80
	if len(prompt) <= max {
		return prompt
	}
	return prompt[:max]
}

func writeGenerationError(w http.ResponseWriter, err error) {
	var confErr *generate.ConfigurationError
	if errors.As(err, &confErr) {
		writeJSONError(w, http.StatusInternalServerError, confErr.Error())
		return
	}
	var upErr *generate.UpstreamError
	if errors.As(err, &upErr) {
		writeJSONError(w, http.StatusBadGateway, upErr.Error())
		return
	}
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"code":%d}}`, message, code)
}
