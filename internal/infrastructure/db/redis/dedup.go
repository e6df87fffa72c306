package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks for activation-audit events
// backed by Redis. Key format: audit:<license_key>:<outcome>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact event has already been archived.
func (d *DedupChecker) IsDuplicate(ctx context.Context, key, outcome string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.dedupKey(key, outcome, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this event has been archived (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, key, outcome string, ts time.Time) error {
	return d.client.Set(ctx, d.dedupKey(key, outcome, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) dedupKey(key, outcome string, ts time.Time) string {
	return fmt.Sprintf("audit:%s:%s:%d", key, outcome, ts.Unix())
}
