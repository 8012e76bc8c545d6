package identity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const directoryCacheKey = "basepulse:directory"

// Loader fetches the full directory from the account source.
type Loader interface {
	LoadDirectory(ctx context.Context) ([]Employee, error)
}

// Cache is the one directory cache for the whole process. It replaces the
// lazily-populated package-level maps the analyzers used to keep each on
// their own: it is constructed once, passed by reference, and refreshed
// through an explicit contract instead of implicit mutation.
type Cache struct {
	loader Loader
	rdb    *redis.Client // optional; nil disables the redis layer
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.RWMutex
	dir      *Directory
	loadedAt time.Time

	group singleflight.Group
}

func NewCache(loader Loader, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *Cache {
	l := zap.L().Named("identity.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.cache")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{loader: loader, rdb: rdb, ttl: ttl, logger: l}
}

// Directory returns the cached directory, loading it on first use.
// Concurrent callers share a single upstream fetch.
func (c *Cache) Directory(ctx context.Context) (*Directory, error) {
	c.mu.RLock()
	if c.dir != nil && time.Since(c.loadedAt) < c.ttl {
		dir := c.dir
		c.mu.RUnlock()
		return dir, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(directoryCacheKey, func() (any, error) {
		return c.load(ctx)
	})
	if err != nil {
		// a stale directory beats no directory for an informational report
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.dir != nil {
			c.logger.Warn("directory load failed, serving stale copy", zap.Error(err))
			return c.dir, nil
		}
		return nil, err
	}
	return v.(*Directory), nil
}

// Refresh drops every cached layer and re-fetches from the account source.
func (c *Cache) Refresh(ctx context.Context) error {
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, directoryCacheKey).Err(); err != nil {
			c.logger.Warn("redis invalidate failed", zap.Error(err))
		}
	}

	c.mu.Lock()
	c.dir = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()

	_, err := c.Directory(ctx)
	return err
}

func (c *Cache) load(ctx context.Context) (*Directory, error) {
	if employees, ok := c.fromRedis(ctx); ok {
		dir := NewDirectory(employees)
		c.store(dir)
		return dir, nil
	}

	employees, err := c.loader.LoadDirectory(ctx)
	if err != nil {
		return nil, err
	}

	dir := NewDirectory(employees)
	c.store(dir)
	c.toRedis(ctx, employees)
	c.logger.Info("directory loaded", zap.Int("employees", dir.Len()))
	return dir, nil
}

func (c *Cache) store(dir *Directory) {
	c.mu.Lock()
	c.dir = dir
	c.loadedAt = time.Now()
	c.mu.Unlock()
}

func (c *Cache) fromRedis(ctx context.Context) ([]Employee, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, directoryCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis read failed", zap.Error(err))
		}
		return nil, false
	}
	var employees []Employee
	if err := json.Unmarshal(raw, &employees); err != nil {
		c.logger.Warn("redis payload unmarshal failed", zap.Error(err))
		return nil, false
	}
	return employees, true
}

func (c *Cache) toRedis(ctx context.Context, employees []Employee) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(employees)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, directoryCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis write failed", zap.Error(err))
	}
}
