package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	alarmPrefix    = "alarm:"
	actionIndexKey = "alarm-index"
)

// RegionState is the last known alarm state of a region.
type RegionState struct {
	RegionID   string    `json:"region_id"`
	RegionName string    `json:"region_name"`
	Active     bool      `json:"active"`
	Types      []string  `json:"types"`
	Since      time.Time `json:"since"`
}

type Cache struct {
	Client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{Client: client}, nil
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// SetActionIndex records the last processed upstream action index.
func (c *Cache) SetActionIndex(ctx context.Context, idx int64) error {
	return c.Client.Set(ctx, actionIndexKey, idx, 0).Err()
}

// GetActionIndex returns the last processed action index, or 0 if none.
func (c *Cache) GetActionIndex(ctx context.Context) (int64, error) {
	val, err := c.Client.Get(ctx, actionIndexKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// SetRegionState stores the alarm state of a region.
func (c *Cache) SetRegionState(ctx context.Context, st RegionState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal region state: %w", err)
	}
	return c.Client.Set(ctx, alarmPrefix+st.RegionID, data, 0).Err()
}

// GetAllRegionStates returns every stored region state keyed by region ID.
func (c *Cache) GetAllRegionStates(ctx context.Context) (map[string]RegionState, error) {
	result := make(map[string]RegionState)

	iter := c.Client.Scan(ctx, 0, alarmPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := c.Client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var st RegionState
		if err := json.Unmarshal([]byte(val), &st); err != nil {
			continue
		}
		result[key[len(alarmPrefix):]] = st
	}
	return result, iter.Err()
}
