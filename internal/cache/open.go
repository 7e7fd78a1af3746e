package cache

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/paging"
)

// Open builds the provider named by cfg.Backend. It returns nil for "none".
func Open(ctx context.Context, cfg config.CacheConfig) (Provider, error) {
	switch cfg.Backend {
	case "none", "":
		return nil, nil
	case "memory", "ristretto":
		return NewRistretto(RistrettoConfig{MaxCost: cfg.MaxCost})
	case "bigcache":
		return NewBigCache(ctx, BigCacheConfig{
			LifeWindow:         cfg.TTL,
			Shards:             cfg.Shards,
			HardMaxCacheSizeMB: cfg.MaxBytes,
		})
	case "bolt":
		if cfg.Path == "" {
			return nil, fmt.Errorf("bolt cache needs a path")
		}
		return OpenBolt(cfg.Path)
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedis(client, true)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// OpenStore combines Open and NewCodec into a paging store. The returned
// provider must be closed by the caller; both are nil for "none".
func OpenStore[T any](ctx context.Context, cfg config.CacheConfig) (paging.Store[T], Provider, error) {
	codec, err := NewCodec[paging.Snapshot[T]](cfg.Codec)
	if err != nil {
		return nil, nil, err
	}
	p, err := Open(ctx, cfg)
	if err != nil || p == nil {
		return nil, nil, err
	}
	return NewSnapshotStore(p, codec, cfg.TTL), p, nil
}
