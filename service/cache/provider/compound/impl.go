// Package compound stacks providers from fastest to slowest.
package compound

import (
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/service/cache/provider"
)

type impl struct {
	layers []provider.Provider
}

// NewCompound reads layers front to back and backfills the layers in front
// of a hit. A failing layer is treated as a miss on reads, so losing a
// shared layer degrades to the local one.
func NewCompound(layers []provider.Provider) provider.Provider {
	return &impl{layers: layers}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	var lastErr error
	for depth, layer := range im.layers {
		val, ttl, err := layer.Get(c, key)
		if err == provider.ErrNotFound {
			continue
		} else if err != nil {
			c.WithFields(log.Fields{"err": err, "key": key, "layer": depth}).Warn("cache layer Get failed")
			lastErr = err
			continue
		}
		im.backfill(c, depth, key, val, ttl)
		return val, ttl, nil
	}
	if lastErr != nil {
		return nil, 0, lastErr
	}
	return nil, 0, provider.ErrNotFound
}

func (im *impl) backfill(c ctx.Ctx, depth int, key string, val []byte, ttl time.Duration) {
	for i := 0; i < depth; i++ {
		if err := im.layers[i].Set(c, key, val, ttl); err != nil {
			c.WithFields(log.Fields{"err": err, "key": key, "layer": i}).Warn("cache backfill failed")
		}
	}
}

// Set writes every layer and reports the first failure
func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	var first error
	for _, layer := range im.layers {
		if err := layer.Set(c, key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Del clears back to front so a concurrent Get cannot backfill a front
// layer from a back layer that is about to be cleared.
func (im *impl) Del(c ctx.Ctx, key string) error {
	var first error
	for i := len(im.layers) - 1; i >= 0; i-- {
		if err := im.layers[i].Del(c, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
