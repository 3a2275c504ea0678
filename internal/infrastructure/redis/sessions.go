package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dealdesk/internal/config"
)

const (
	viewerKeyPrefix = "dealdesk:viewer:"
	onceKeyPrefix   = "dealdesk:once:"

	// onceTTL absorbs double-clicks on non-idempotent transitions before
	// they reach the state machine.
	onceTTL = 5 * time.Second
)

// ViewerSessions hands out stable anonymized identities for counter-party
// viewers without accounts, so uniqueViews counts a returning anonymous
// viewer once for the lifetime of their session token.
type ViewerSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewerSessions(rc *RedisClient, cfg *config.Config) *ViewerSessions {
	return &ViewerSessions{
		client: rc.Client,
		ttl:    time.Duration(cfg.Tracking.ViewerSessionTTLHours) * time.Hour,
	}
}

// NewViewerSessionsWithClient wires an explicit client; used by tests.
func NewViewerSessionsWithClient(client *redis.Client, ttl time.Duration) *ViewerSessions {
	return &ViewerSessions{client: client, ttl: ttl}
}

// Resolve maps a session token to a viewer identity, minting one on first
// sight. The TTL is refreshed on every hit.
func (s *ViewerSessions) Resolve(ctx context.Context, token string) (string, error) {
	key := viewerKeyPrefix + token

	id, err := s.client.Get(ctx, key).Result()
	if err == nil {
		s.client.Expire(ctx, key, s.ttl)
		return id, nil
	}
	if err != redis.Nil {
		return "", fmt.Errorf("failed to resolve viewer session: %w", err)
	}

	id = "anon-" + uuid.NewString()
	if err := s.client.Set(ctx, key, id, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store viewer session: %w", err)
	}
	return id, nil
}

// OnceGuard is a short-lived SETNX lock keyed by action and entity. It is
// not the correctness mechanism for concurrent transitions (the store's
// compare-and-set is); it only sheds duplicate requests fired back-to-back.
type OnceGuard struct {
	client *redis.Client
}

func NewOnceGuard(rc *RedisClient) *OnceGuard {
	return &OnceGuard{client: rc.Client}
}

func NewOnceGuardWithClient(client *redis.Client) *OnceGuard {
	return &OnceGuard{client: client}
}

// Acquire reports whether the caller is first in the window. Redis being
// unavailable fails open: the state machine still rejects the loser.
func (g *OnceGuard) Acquire(ctx context.Context, action, entityID string) bool {
	key := fmt.Sprintf("%s%s:%s", onceKeyPrefix, action, entityID)
	ok, err := g.client.SetNX(ctx, key, "1", onceTTL).Result()
	if err != nil {
		return true
	}
	return ok
}
