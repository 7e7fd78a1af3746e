package cache

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"
)

type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// Ristretto is an in-process provider with cost-based eviction.
type Ristretto struct {
	c *rc.Cache
}

func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	if cfg.MaxCost <= 0 {
		return nil, errors.New("ristretto: max cost must be positive")
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 1e5
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c}, nil
}

func (p *Ristretto) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write buffer so the value is visible to the next Get.
func (p *Ristretto) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if cost <= 0 {
		cost = int64(len(value))
	}
	if ttl < 0 {
		ttl = 0
	}
	ok := p.c.SetWithTTL(key, value, cost, ttl)
	p.c.Wait()
	return ok, nil
}

func (p *Ristretto) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Ristretto) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}
