package chatws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one transcript entry of a chat session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript stores chat history per conversation.
type Transcript interface {
	Append(ctx context.Context, conversationID string, msg Message) error
	List(ctx context.Context, conversationID string, limit int64) ([]Message, error)
}

const (
	transcriptKeyPrefix = "chat:transcript:"
	transcriptMax       = 200
	transcriptTTL       = 24 * time.Hour
)

// RedisTranscript keeps transcripts in Redis lists with a rolling cap and a
// day of retention, so history survives service restarts.
type RedisTranscript struct {
	client *redis.Client
}

func NewRedisTranscript(client *redis.Client) *RedisTranscript {
	if client == nil {
		panic("chatws: redis client required")
	}
	return &RedisTranscript{client: client}
}

func (t *RedisTranscript) Append(ctx context.Context, conversationID string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("chatws: marshal transcript entry: %w", err)
	}
	key := transcriptKeyPrefix + conversationID
	pipe := t.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -transcriptMax, -1)
	pipe.Expire(ctx, key, transcriptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("chatws: append transcript: %w", err)
	}
	return nil
}

func (t *RedisTranscript) List(ctx context.Context, conversationID string, limit int64) ([]Message, error) {
	if limit <= 0 {
		limit = transcriptMax
	}
	key := transcriptKeyPrefix + conversationID
	raw, err := t.client.LRange(ctx, key, -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("chatws: read transcript: %w", err)
	}
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// MemoryTranscript is the in-process fallback used when Redis is not
// configured. History lives only as long as the process.
type MemoryTranscript struct {
	mu    sync.RWMutex
	store map[string][]Message
}

func NewMemoryTranscript() *MemoryTranscript {
	return &MemoryTranscript{store: make(map[string][]Message)}
}

func (t *MemoryTranscript) Append(ctx context.Context, conversationID string, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := append(t.store[conversationID], msg)
	if len(msgs) > transcriptMax {
		msgs = msgs[len(msgs)-transcriptMax:]
	}
	t.store[conversationID] = msgs
	return nil
}

func (t *MemoryTranscript) List(ctx context.Context, conversationID string, limit int64) ([]Message, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := t.store[conversationID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
