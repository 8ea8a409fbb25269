// Package cache keeps generated essay themes in Redis so repeated theme
// requests do not each pay for a generation call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	// DefaultThemeTTL is how long a generated theme list is served
	DefaultThemeTTL = 6 * time.Hour
	keyPrefix       = "tutor"
	themesKey       = "essay-themes:v1"
)

// store is the subset of redis.Cmdable the cache uses
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ThemeCache stores the essay theme list as a single JSON value
type ThemeCache struct {
	client store
	ttl    time.Duration
	key    string
}

// NewThemeCache creates a theme cache. A non-positive ttl selects DefaultThemeTTL.
// namespace separates deployments sharing one Redis; it may be empty.
func NewThemeCache(client redis.Cmdable, ttl time.Duration, namespace string) *ThemeCache {
	return newThemeCache(client, ttl, namespace)
}

func newThemeCache(client store, ttl time.Duration, namespace string) *ThemeCache {
	if ttl <= 0 {
		ttl = DefaultThemeTTL
	}
	return &ThemeCache{client: client, ttl: ttl, key: themeKey(namespace)}
}

func themeKey(namespace string) string {
	namespace = strings.Trim(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		return fmt.Sprintf("%s:%s", keyPrefix, themesKey)
	}
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, themesKey)
}

// GetThemes returns the cached themes, or nil, nil on a miss
func (c *ThemeCache) GetThemes(ctx context.Context) ([]types.EssayTheme, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read themes from cache: %w", err)
	}

	var themes []types.EssayTheme
	if err := json.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("failed to decode cached themes: %w", err)
	}
	return themes, nil
}

// SetThemes replaces the cached themes. An empty list is not cached.
func (c *ThemeCache) SetThemes(ctx context.Context, themes []types.EssayTheme) error {
	if len(themes) == 0 {
		return nil
	}
	data, err := json.Marshal(themes)
	if err != nil {
		return fmt.Errorf("failed to encode themes: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write themes to cache: %w", err)
	}
	return nil
}

// Connect opens a Redis client from a redis:// URL and checks it with PING
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
