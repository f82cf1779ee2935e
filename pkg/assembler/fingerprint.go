package assembler

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

// Fingerprint material bounds. Only a prefix of the prompt and of each
// trailing turn participates in the key, so near-identical requests that
// differ deep in a long prompt may share an entry. That tradeoff keeps key
// construction cheap and is acceptable within the short TTL window.
const (
	fingerprintTurns  = 3
	promptKeyLength   = 200
	turnKeyLength     = 100
	noArtifactMarker  = "artifact:none"
	artifactKeyPrefix = "artifact:"
)

// fingerprint derives the cache key from the prompt, the last few history
// turns, and the current artifact. Deterministic and not reversible.
func fingerprint(prompt string, history []models.ConversationTurn, currentMarkup string) string {
	var b strings.Builder
	b.WriteString("prompt:")
	b.WriteString(truncate(normalize(prompt), promptKeyLength))

	if len(history) > fingerprintTurns {
		history = history[len(history)-fingerprintTurns:]
	}
	for _, turn := range history {
		b.WriteString("|")
		b.WriteString(turn.Role)
		b.WriteString(":")
		b.WriteString(truncate(normalize(turn.Content), turnKeyLength))
	}

	b.WriteString("|")
	if currentMarkup == "" {
		b.WriteString(noArtifactMarker)
	} else {
		// The full markup participates so the same prompt against two
		// different artifacts never collides.
		b.WriteString(artifactKeyPrefix)
		b.WriteString(normalize(currentMarkup))
	}

	return fmt.Sprintf("%x", sha256.Sum256([]byte(b.String())))
}

// normalize collapses whitespace runs to single spaces so incidental
// formatting differences do not defeat the cache.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
