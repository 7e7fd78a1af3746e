package cache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"
)

type BigCacheConfig struct {
	// LifeWindow is the global entry lifetime; bigcache has no per-entry TTL.
	LifeWindow         time.Duration
	Shards             int
	HardMaxCacheSizeMB int
}

// BigCache is an off-heap style provider with a global TTL.
type BigCache struct {
	c *bc.BigCache
}

func NewBigCache(ctx context.Context, cfg BigCacheConfig) (*BigCache, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = 10 * time.Minute
	}
	conf := bc.DefaultConfig(life)
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &BigCache{c: c}, nil
}

func (p *BigCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *BigCache) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	if err := p.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (p *BigCache) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (p *BigCache) Close(_ context.Context) error {
	return p.c.Close()
}
