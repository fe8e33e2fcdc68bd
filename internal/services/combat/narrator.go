package combat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tavernkeep/gamemaster/internal/clients/llm"
	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

const narratorPrompt = "You are a combat narrator for a tabletop fantasy game. Rewrite the mechanical combat result you are given as one or two vivid sentences of third-person narration. Never change the numbers or the outcome. Reply with the narration only."

type llmNarrator struct {
	client llm.Client
}

// NewLLMNarrator returns a Narrator backed by the completion gateway.
// Callers treat it as best-effort; errors surface to the resolver's
// logging, not to players.
func NewLLMNarrator(client llm.Client) Narrator {
	if client == nil {
		panic("llm client is required")
	}
	return &llmNarrator{client: client}
}

// Narrate implements Narrator
func (n *llmNarrator) Narrate(ctx context.Context, entry *entities.CombatLogEntry) (string, error) {
	body, err := n.client.StreamCompletion(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: narratorPrompt},
			{Role: "user", Content: fmt.Sprintf("Round %d: %s", entry.Round, entry.Description)},
		},
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	result, err := llm.ConsumeStream(body, io.Discard)
	if err != nil {
		return "", apperr.WrapWithCode(err, apperr.CodeUpstream, "narration stream failed")
	}

	return strings.TrimSpace(result.Text), nil
}
