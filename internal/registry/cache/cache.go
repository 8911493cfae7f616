// Package cache is the Redis-backed snapshot cache for the two read views
// the verification portal hammers: certification and status. Entries are
// JSON snapshots with a short TTL; writers invalidate on every certify,
// revoke and status update, so the TTL only bounds staleness after a
// missed invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cultiva/internal/policy"
	"cultiva/internal/registry/models"
	"cultiva/pkg/domain"
)

const (
	certKeyPrefix   = "registry:cert:"
	statusKeyPrefix = "registry:status:"
)

// SnapshotCache caches registry read views in Redis.
type SnapshotCache struct {
	client *redis.Client
}

// New constructs a SnapshotCache. The client lifecycle is managed by the
// caller.
func New(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

func certKey(id domain.FarmID) string {
	return certKeyPrefix + id.String()
}

func statusKey(id domain.FarmID) string {
	return statusKeyPrefix + id.String()
}

// SaveCertification stores a certification snapshot with the policy TTL.
func (c *SnapshotCache) SaveCertification(ctx context.Context, cert *models.Certification) error {
	payload, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("marshal certification: %w", err)
	}
	return c.client.Set(ctx, certKey(cert.FarmID), payload, policy.RegistryCacheTTL).Err()
}

// FindCertification returns the cached snapshot, or nil on a miss.
func (c *SnapshotCache) FindCertification(ctx context.Context, id domain.FarmID) (*models.Certification, error) {
	payload, err := c.client.Get(ctx, certKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cert models.Certification
	if err := json.Unmarshal(payload, &cert); err != nil {
		return nil, fmt.Errorf("unmarshal certification: %w", err)
	}
	return &cert, nil
}

// SaveStatus stores a status snapshot with the policy TTL.
func (c *SnapshotCache) SaveStatus(ctx context.Context, status *models.FarmStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return c.client.Set(ctx, statusKey(status.FarmID), payload, policy.RegistryCacheTTL).Err()
}

// FindStatus returns the cached snapshot, or nil on a miss.
func (c *SnapshotCache) FindStatus(ctx context.Context, id domain.FarmID) (*models.FarmStatus, error) {
	payload, err := c.client.Get(ctx, statusKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var status models.FarmStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return &status, nil
}

// Invalidate drops both snapshots for a farm. Pipelined; partial failure
// surfaces as an error and the caller treats it as soft.
func (c *SnapshotCache) Invalidate(ctx context.Context, id domain.FarmID) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, certKey(id))
	pipe.Del(ctx, statusKey(id))
	_, err := pipe.Exec(ctx)
	return err
}
