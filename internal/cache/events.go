package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/eventick/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "eventick:event"

// EventCache keeps published events keyed by PIN code and slug for the
// public lookup endpoints.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EventCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func key(field, value string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, field, value)
}

// Get returns the cached event, or (nil, nil) on a miss.
func (c *EventCache) Get(ctx context.Context, field, value string) (*models.Event, error) {
	raw, err := c.client.Get(ctx, key(field, value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode cached event: %w", err)
	}
	return &event, nil
}

// Set stores the event under both its PIN code and slug.
func (c *EventCache) Set(ctx context.Context, event *models.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	if event.PinCode != "" {
		pipe.Set(ctx, key("pin_code", event.PinCode), raw, c.ttl)
	}
	if event.Slug != "" {
		pipe.Set(ctx, key("slug", event.Slug), raw, c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (c *EventCache) Invalidate(ctx context.Context, event *models.Event) error {
	var keys []string
	if event.PinCode != "" {
		keys = append(keys, key("pin_code", event.PinCode))
	}
	if event.Slug != "" {
		keys = append(keys, key("slug", event.Slug))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *EventCache) Close() error {
	return c.client.Close()
}
