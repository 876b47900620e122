// FILE: pkg/cache/response_cache.go
// PURPOSE: Redis-backed cache of final answer envelopes keyed by normalized query

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

// ResponseCache is the lookup the orchestrator consults before calling the
// model. A nil-safe miss is normal operation; cache trouble must never fail a
// request.
type ResponseCache interface {
	Get(ctx context.Context, mode assistant.OperatingMode, query string) (*assistant.AnswerEnvelope, bool)
	Set(ctx context.Context, mode assistant.OperatingMode, query string, envelope *assistant.AnswerEnvelope)
}

// RedisResponseCache stores envelopes in Redis with a bounded TTL.
type RedisResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ResponseCache = &RedisResponseCache{}

func NewRedisResponseCache(client *redis.Client, ttl time.Duration) *RedisResponseCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisResponseCache{client: client, ttl: ttl}
}

func cacheKey(mode assistant.OperatingMode, query string) string {
	return fmt.Sprintf("oxen:answer:%s:%s", mode, assistant.NormalizeQuery(query))
}

func (c *RedisResponseCache) Get(ctx context.Context, mode assistant.OperatingMode, query string) (*assistant.AnswerEnvelope, bool) {
	raw, err := c.client.Get(ctx, cacheKey(mode, query)).Bytes()
	if err != nil {
		return nil, false
	}
	var envelope assistant.AnswerEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, false
	}
	return &envelope, true
}

func (c *RedisResponseCache) Set(ctx context.Context, mode assistant.OperatingMode, query string, envelope *assistant.AnswerEnvelope) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(mode, query), raw, c.ttl)
}

// NoopResponseCache disables caching (tests, local runs without Redis).
type NoopResponseCache struct{}

var _ ResponseCache = NoopResponseCache{}

func (NoopResponseCache) Get(context.Context, assistant.OperatingMode, string) (*assistant.AnswerEnvelope, bool) {
	return nil, false
}

func (NoopResponseCache) Set(context.Context, assistant.OperatingMode, string, *assistant.AnswerEnvelope) {
}
