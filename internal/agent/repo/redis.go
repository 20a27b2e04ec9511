// Package repo implements the conversation state persistence contract and the
// transcript sink. The Redis implementations are the durable path with TTL;
// the memory implementations back local runs and tests when no Redis is
// configured. Which one is used is decided once, at construction time.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentalheights/agent-core/internal/agent/model"
	errx "github.com/rentalheights/agent-core/internal/core/error"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

type RedisStateRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStateRepository(rdb redis.Cmdable, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisStateRepository) stateKey(sessionID string) string {
	return fmt.Sprintf("conversation_state:%s", sessionID)
}

func (r *RedisStateRepository) Save(ctx context.Context, sessionID string, state *model.ConversationState) error {
	b, err := model.Serialize(state)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to serialize state")
		return err
	}

	key := r.stateKey(sessionID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStateRepository) Load(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	key := r.stateKey(sessionID)

	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to load state from redis")
		}
		return nil, errx.WrapRedis(err)
	}

	state, err := model.Deserialize(b)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to deserialize state")
		return nil, err
	}
	return state, nil
}

func (r *RedisStateRepository) Delete(ctx context.Context, sessionID string) error {
	key := r.stateKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStateRepository) ExtendTTL(ctx context.Context, sessionID string) error {
	key := r.stateKey(sessionID)
	if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to extend state TTL")
		return errx.WrapRedis(err)
	} else if !ok {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("no state entry to extend TTL on")
	}
	return nil
}

var _ model.StateRepository = (*RedisStateRepository)(nil)

// RedisTranscript appends transcript entries to a per-session list, touching
// the TTL on every write.
type RedisTranscript struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisTranscript(rdb redis.Cmdable, ttl time.Duration) *RedisTranscript {
	return &RedisTranscript{rdb: rdb, ttl: ttl}
}

func (r *RedisTranscript) transcriptKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s:messages", sessionID)
}

func (r *RedisTranscript) Append(ctx context.Context, sessionID string, msg model.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal transcript entry")
		return fmt.Errorf("marshal transcript entry: %w", err)
	}
	key := r.transcriptKey(sessionID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push transcript entry to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on transcript key")
		}
	}
	return nil
}

// History returns the full stored transcript in insertion order.
func (r *RedisTranscript) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	key := r.transcriptKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.Message{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load transcript from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]model.Message, 0, len(rows))
	for i, row := range rows {
		var m model.Message
		if err := json.Unmarshal([]byte(row), &m); err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Int("index", i).Msg("failed to unmarshal transcript entry")
			return nil, fmt.Errorf("unmarshal transcript entry at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

var _ model.TranscriptSink = (*RedisTranscript)(nil)
