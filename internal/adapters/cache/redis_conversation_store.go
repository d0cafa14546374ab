package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/consilium-health/consilium/internal/domain/entities"
	"github.com/consilium-health/consilium/internal/domain/providers"
	redisclient "github.com/consilium-health/consilium/internal/infrastructure/clients/redis"
)

const maxStoredTurns = 100

// RedisConversationStore implements the ConversationStore interface on a
// Redis list per session, JSON-encoded, with a sliding TTL.
type RedisConversationStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisConversationStore creates a new conversation store.
func NewRedisConversationStore(client *redisclient.Client, ttl time.Duration) providers.ConversationStore {
	return &RedisConversationStore{
		client: client,
		ttl:    ttl,
	}
}

func conversationKey(sessionID string) string {
	return "conversation:" + sessionID
}

// Append adds a turn to the session's history and refreshes the TTL.
func (s *RedisConversationStore) Append(ctx context.Context, sessionID string, turn *entities.ConversationTurn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to encode conversation turn: %w", err)
	}

	key := conversationKey(sessionID)
	pipe := s.client.Client().TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -maxStoredTurns, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append conversation turn: %w", err)
	}
	return nil
}

// History returns the most recent turns in chronological order.
func (s *RedisConversationStore) History(ctx context.Context, sessionID string, limit int) ([]*entities.ConversationTurn, error) {
	if limit <= 0 {
		limit = maxStoredTurns
	}

	raw, err := s.client.Client().LRange(ctx, conversationKey(sessionID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation history: %w", err)
	}

	turns := make([]*entities.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn entities.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// A corrupt entry should not hide the rest of the history.
			continue
		}
		turns = append(turns, &turn)
	}
	return turns, nil
}

// Clear removes the session's history.
func (s *RedisConversationStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Client().Del(ctx, conversationKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation history: %w", err)
	}
	return nil
}
