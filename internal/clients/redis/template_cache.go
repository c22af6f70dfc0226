package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/types"
	"github.com/heavyduty/heavyduty-backend/internal/utils"
)

// TemplateCache caches the active prompt template per role. It is optional;
// a nil *TemplateCache is a valid no-op cache.
type TemplateCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewTemplateCache(log *logger.Logger) (*TemplateCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSec := utils.GetEnvAsInt("PROMPT_TEMPLATE_CACHE_TTL_SECONDS", 300, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &TemplateCache{
		log: log.With("service", "TemplateCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSec) * time.Second,
	}, nil
}

func key(role string) string {
	return "prompt_template:active:" + role
}

// Get returns (nil, nil) on a cache miss.
func (c *TemplateCache) Get(ctx context.Context, role string) (*types.PromptTemplate, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, key(role)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t types.PromptTemplate
	if err := json.Unmarshal(raw, &t); err != nil {
		// stale or corrupt entry; treat as a miss
		_ = c.rdb.Del(ctx, key(role)).Err()
		return nil, nil
	}
	return &t, nil
}

func (c *TemplateCache) Set(ctx context.Context, role string, t *types.PromptTemplate) error {
	if c == nil || c.rdb == nil || t == nil {
		return nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(role), raw, c.ttl).Err()
}

func (c *TemplateCache) Invalidate(ctx context.Context, role string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key(role)).Err()
}

func (c *TemplateCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
