// This file implements a Redis cache in front of another conversation store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/BTreeMap/DialogCore/internal/models"
)

const (
	// DefaultCacheTTL is how long a conversation record stays cached.
	DefaultCacheTTL = 30 * time.Minute
	cacheKeyPrefix  = "dialogcore:conversation:"
)

// CachedStore serves conversation records from Redis and writes through to
// the backing store. The turn log is never cached.
type CachedStore struct {
	Store
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewCachedStore wraps backing with a Redis cache.
func NewCachedStore(backing Store, rdb goredis.UniversalClient, opts ...Option) *CachedStore {
	cfg := Opts{CacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CachedStore{Store: backing, rdb: rdb, ttl: cfg.CacheTTL}
}

func cacheKey(id string) string { return cacheKeyPrefix + id }

func (s *CachedStore) put(ctx context.Context, c *models.Conversation) {
	raw, err := json.Marshal(c)
	if err != nil {
		slog.Warn("CachedStore.put: encode failed", "error", err, "conversationID", c.ID)
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(c.ID), raw, s.ttl).Err(); err != nil {
		slog.Warn("CachedStore.put: redis set failed", "error", err, "conversationID", c.ID)
	}
}

func (s *CachedStore) evict(ctx context.Context, id string) {
	if err := s.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		slog.Warn("CachedStore.evict: redis del failed", "error", err, "conversationID", id)
	}
}

func (s *CachedStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	raw, err := s.rdb.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var c models.Conversation
		if err := json.Unmarshal(raw, &c); err == nil {
			slog.Debug("CachedStore.GetConversation: cache hit", "conversationID", id)
			return &c, nil
		}
		slog.Warn("CachedStore.GetConversation: dropping undecodable entry", "conversationID", id)
		s.evict(ctx, id)
	case !errors.Is(err, goredis.Nil):
		slog.Warn("CachedStore.GetConversation: redis get failed", "error", err, "conversationID", id)
	}
	c, err := s.Store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, c)
	return c, nil
}

func (s *CachedStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	if err := s.Store.SaveConversation(ctx, c); err != nil {
		s.evict(ctx, c.ID)
		return err
	}
	s.put(ctx, c)
	return nil
}

func (s *CachedStore) CommitTurn(ctx context.Context, c *models.Conversation, t models.TurnRecord) error {
	if err := s.Store.CommitTurn(ctx, c, t); err != nil {
		s.evict(ctx, c.ID)
		return err
	}
	s.put(ctx, c)
	return nil
}

func (s *CachedStore) DeleteConversation(ctx context.Context, id string) error {
	s.evict(ctx, id)
	return s.Store.DeleteConversation(ctx, id)
}

// Close closes the backing store and the Redis client.
func (s *CachedStore) Close() error {
	return errors.Join(s.Store.Close(), s.rdb.Close())
}
