// Package session keeps per-user conversation context in Redis so the
// parser can be handed recent turns alongside the current message.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reservation-agent/internal/common/config"
	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

// Turn is one exchange in a conversation: what the user said and what the
// agent understood and replied.
type Turn struct {
	UserText  string        `json:"user_text"`
	Intent    models.Intent `json:"intent"`
	Reply     string        `json:"reply"`
	Timestamp string        `json:"timestamp"`
}

// Store persists rolling conversation history keyed by session ID.
type Store struct {
	client     redis.Cmdable
	ttl        time.Duration
	maxHistory int
	logger     logger.Logger
	nowFn      func() time.Time
}

func NewStore(client redis.Cmdable, cfg config.SessionConfig, log logger.Logger) *Store {
	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Store{
		client:     client,
		ttl:        ttl,
		maxHistory: maxHistory,
		logger:     log.WithFields(map[string]interface{}{"component": "session"}),
		nowFn:      time.Now,
	}
}

// WithClock replaces the timestamp source. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.nowFn = now
	return s
}

func (s *Store) key(sessionID string) string {
	return fmt.Sprintf("session:%s:history", sessionID)
}

// Append records one finished turn and refreshes the session TTL. The list
// is trimmed so only the most recent maxHistory turns survive.
func (s *Store) Append(ctx context.Context, sessionID string, turn Turn) error {
	if turn.Timestamp == "" {
		turn.Timestamp = s.nowFn().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal session turn: %w", err)
	}

	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.maxHistory), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("failed to persist session turn", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return fmt.Errorf("persist session turn: %w", err)
	}
	return nil
}

// History returns the stored turns for a session, oldest first. A missing
// session yields an empty slice, not an error.
func (s *Store) History(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("read session history: %w", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			s.logger.Warn("dropping unreadable session turn", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Context condenses stored history into the loose map handed to the message
// pipeline.
func (s *Store) Context(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	turns, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id": sessionID,
		"turns":      len(turns),
		"history":    turns,
	}, nil
}

// Clear drops a session's history.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
