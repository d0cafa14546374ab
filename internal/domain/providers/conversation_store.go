package providers

import (
	"context"

	"github.com/consilium-health/consilium/internal/domain/entities"
)

// ConversationStore keeps per-session conversation history. History is
// advisory context for prompt construction, so implementations may expire
// entries; a missing session simply yields an empty history.
type ConversationStore interface {
	// Append adds a turn to the session's history.
	Append(ctx context.Context, sessionID string, turn *entities.ConversationTurn) error

	// History returns the session's turns in chronological order, capped at limit.
	History(ctx context.Context, sessionID string, limit int) ([]*entities.ConversationTurn, error)

	// Clear removes the session's history.
	Clear(ctx context.Context, sessionID string) error
}
