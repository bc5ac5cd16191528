package views

import (
	"context"
	"encoding/json"
	"time"

	"github.com/defactolounge/lounge-backend/pkg/logger"
)

// SnapshotStore is the slice of the redis client the views cache needs.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ViewSnapshotKey(view string, variant string) string
}

// snapshotCache holds view snapshots for one poll interval so a floor full
// of polling clients costs one rebuild per tick. Nil client disables caching;
// any redis failure falls through to a direct rebuild.
type snapshotCache struct {
	client SnapshotStore
	ttl    time.Duration
	logg   *logger.Logger
}

func newSnapshotCache(client SnapshotStore, ttl time.Duration, logg *logger.Logger) *snapshotCache {
	return &snapshotCache{client: client, ttl: ttl, logg: logg}
}

func (c *snapshotCache) load(ctx context.Context, view, variant string, out any) bool {
	if c.client == nil || c.ttl <= 0 {
		return false
	}
	raw, err := c.client.Get(ctx, c.client.ViewSnapshotKey(view, variant))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "discarding unreadable view snapshot")
		}
		return false
	}
	return true
}

func (c *snapshotCache) store(ctx context.Context, view, variant string, value any) {
	if c.client == nil || c.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(ctx, "encode view snapshot", err)
		}
		return
	}
	if err := c.client.Set(ctx, c.client.ViewSnapshotKey(view, variant), payload, c.ttl); err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "view snapshot cache unavailable")
		}
	}
}
