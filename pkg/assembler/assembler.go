// Package assembler builds the ordered message sequence sent to the
// generation API and the cache fingerprint identifying the request.
package assembler

import (
	"fmt"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

// HistoryWindow bounds how many trailing conversation turns are included
// in the assembled context.
const HistoryWindow = 10

// Sampling temperatures per request variant. Modification requests run
// colder so targeted edits stay close to the existing artifact.
const (
	freshTemperature        = 0.8
	modificationTemperature = 0.3
	chatTemperature         = 0.7
)

// Request is a fully decided generation request: which instruction set to
// use, what context it carries, and how it is identified in the cache.
// The variant is chosen once, at construction, before any API call.
type Request interface {
	// Messages returns the ordered sequence: system instruction, trailing
	// history window, current user turn.
	Messages() []models.ChatMessage
	// Fingerprint returns the normalized cache key for this request.
	Fingerprint() string
	// Temperature returns the sampling temperature for this variant.
	Temperature() float64
}

// FreshGenerationRequest produces a brand-new artifact from scratch.
type FreshGenerationRequest struct {
	Prompt  string
	History []models.ConversationTurn
}

// ModificationRequest applies a targeted change to an existing artifact,
// preserving everything not explicitly requested to change.
type ModificationRequest struct {
	Prompt        string
	History       []models.ConversationTurn
	CurrentMarkup string
}

// ChatRequest is a conversational exchange that produces a plain reply
// rather than an artifact.
type ChatRequest struct {
	Prompt  string
	History []models.ConversationTurn
}

// NewGenerationRequest decides the generation variant from the presence of
// a current artifact: a non-empty markup snapshot makes this a
// modification, otherwise a fresh generation.
func NewGenerationRequest(prompt string, history []models.ConversationTurn, currentMarkup string) Request {
	if currentMarkup != "" {
		return ModificationRequest{Prompt: prompt, History: history, CurrentMarkup: currentMarkup}
	}
	return FreshGenerationRequest{Prompt: prompt, History: history}
}

func (r FreshGenerationRequest) Messages() []models.ChatMessage {
	return assemble(freshGenerationPrompt, r.History, r.Prompt)
}

func (r FreshGenerationRequest) Fingerprint() string {
	return fingerprint(r.Prompt, r.History, "")
}

func (r FreshGenerationRequest) Temperature() float64 { return freshTemperature }

func (r ModificationRequest) Messages() []models.ChatMessage {
	msgs := assemble(modificationPrompt, r.History, r.Prompt)
	// Splice the current artifact in just before the user turn so the
	// instruction "change only what was requested" has something to bind to.
	last := msgs[len(msgs)-1]
	msgs[len(msgs)-1] = models.ChatMessage{
		Role:    models.RoleUser,
		Content: fmt.Sprintf("Current prototype markup:\n\n%s", r.CurrentMarkup),
	}
	return append(msgs, last)
}

func (r ModificationRequest) Fingerprint() string {
	return fingerprint(r.Prompt, r.History, r.CurrentMarkup)
}

func (r ModificationRequest) Temperature() float64 { return modificationTemperature }

func (r ChatRequest) Messages() []models.ChatMessage {
	return assemble(chatPrompt, r.History, r.Prompt)
}

func (r ChatRequest) Fingerprint() string {
	return fingerprint(r.Prompt, r.History, "")
}

func (r ChatRequest) Temperature() float64 { return chatTemperature }

// assemble builds system + trailing history window + current user turn.
func assemble(system string, history []models.ConversationTurn, prompt string) []models.ChatMessage {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	msgs := make([]models.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, models.ChatMessage{Role: models.RoleSystem, Content: system})
	for _, turn := range history {
		msgs = append(msgs, models.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	return append(msgs, models.ChatMessage{Role: models.RoleUser, Content: prompt})
}
