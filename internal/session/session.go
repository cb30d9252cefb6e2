// Package session caches identity summaries in Redis between login and
// guard checks. The cache is an optimization only: a miss or an outage
// falls back to the identity store, and a review invalidates the entry so
// the guard never honors a stale approval state for long.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"admissions/internal/account"
)

const keyPrefix = "admissions:session:"

// Cache stores identity-summary JSON keyed by account id.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache with the given entry TTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

// Store caches a summary under its account id.
func (c *Cache) Store(ctx context.Context, summary account.IdentitySummary) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+summary.ID, payload, c.ttl).Err()
}

// Load returns the cached summary or nil on a miss. An entry that fails to
// parse is discarded wholesale, never returned.
func (c *Cache) Load(ctx context.Context, accountID string) (*account.IdentitySummary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, keyPrefix+accountID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var summary account.IdentitySummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		_ = c.Invalidate(ctx, accountID)
		return nil, nil
	}
	return &summary, nil
}

// Invalidate drops the cached entry for an account.
func (c *Cache) Invalidate(ctx context.Context, accountID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keyPrefix+accountID).Err()
}

// Finder is the slice of the identity store the resolver needs.
type Finder interface {
	FindByID(ctx context.Context, id string) (*account.Account, error)
}

// Resolver serves guard lookups: cache first, identity store on a miss,
// repopulating the cache on the way out.
type Resolver struct {
	cache    *Cache
	accounts Finder
}

// NewResolver creates a resolver over a cache and the identity store.
func NewResolver(cache *Cache, accounts Finder) *Resolver {
	return &Resolver{cache: cache, accounts: accounts}
}

// Summary implements auth.SummarySource. A cache error is treated as a
// miss; only the store is authoritative.
func (r *Resolver) Summary(ctx context.Context, accountID string) (*account.IdentitySummary, error) {
	if summary, err := r.cache.Load(ctx, accountID); err == nil && summary != nil {
		return summary, nil
	}
	acct, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}
	summary := acct.Summary()
	_ = r.cache.Store(ctx, summary)
	return &summary, nil
}
