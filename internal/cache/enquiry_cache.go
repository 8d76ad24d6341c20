package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

// ErrMiss is returned when the cache has no entry for the key.
var ErrMiss = errors.New("cache miss")

// EnquiryCache is a read-through cache for single enquiry lookups. Every
// enquiry write invalidates its entry; the TTL bounds staleness when an
// invalidation is lost.
type EnquiryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEnquiryCache builds a cache around the given client. A nil client
// disables caching; all operations become no-ops.
func NewEnquiryCache(client *redis.Client, ttl time.Duration) *EnquiryCache {
	return &EnquiryCache{client: client, ttl: ttl}
}

func key(id string) string {
	return "enquiry:" + id
}

// Get returns the cached enquiry or ErrMiss.
func (c *EnquiryCache) Get(ctx context.Context, id string) (*domain.Enquiry, error) {
	if c == nil || c.client == nil {
		return nil, ErrMiss
	}
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var enquiry domain.Enquiry
	if err := json.Unmarshal(raw, &enquiry); err != nil {
		return nil, ErrMiss
	}
	return &enquiry, nil
}

// Set stores the enquiry under its id.
func (c *EnquiryCache) Set(ctx context.Context, enquiry *domain.Enquiry) error {
	if c == nil || c.client == nil || enquiry == nil {
		return nil
	}
	raw, err := json.Marshal(enquiry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(enquiry.ID), raw, c.ttl).Err()
}

// Invalidate removes the cached entry for the id.
func (c *EnquiryCache) Invalidate(ctx context.Context, id string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key(id)).Err()
}
