package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bookably/booking-app/availability"
	"github.com/bookably/booking-app/models"
)

// Generated slot sets are cheap to recompute but hot on booking pages, so
// they get a short TTL and aggressive invalidation on any occupancy change.
const slotTTL = 60 * time.Second

// SlotCache caches generated slot sets per (resource, service, date). All
// methods are safe on a nil client (cache misses / no-ops), so tests and
// redis-less deployments work unchanged.
type SlotCache struct {
	client *goredis.Client
}

func NewSlotCache(client *goredis.Client) *SlotCache {
	return &SlotCache{client: client}
}

func slotKey(ref models.ResourceRef, serviceID uint, date string) string {
	return fmt.Sprintf("slots:%s:%d:%d:%s", ref.Kind, ref.ID, serviceID, date)
}

func dateSetKey(ref models.ResourceRef, date string) string {
	return fmt.Sprintf("slotkeys:%s:%d:%s", ref.Kind, ref.ID, date)
}

func (c *SlotCache) Get(ctx context.Context, ref models.ResourceRef, serviceID uint, date string) ([]availability.Slot, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, slotKey(ref, serviceID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []availability.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(ctx context.Context, ref models.ResourceRef, serviceID uint, date string, slots []availability.Slot) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	key := slotKey(ref, serviceID, date)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, raw, slotTTL)
	// Track every service key written for the date so Invalidate can drop
	// them all without a SCAN.
	pipe.SAdd(ctx, dateSetKey(ref, date), key)
	pipe.Expire(ctx, dateSetKey(ref, date), slotTTL)
	_, _ = pipe.Exec(ctx)
}

// Invalidate drops every cached slot set for (resource, date).
func (c *SlotCache) Invalidate(ctx context.Context, ref models.ResourceRef, date string) {
	if c == nil || c.client == nil {
		return
	}
	setKey := dateSetKey(ref, date)
	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err == nil && len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
	c.client.Del(ctx, setKey)
}
