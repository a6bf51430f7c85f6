// Package cache layers typed values over a raw byte provider.
package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/service/cache/provider"
)

var (
	ErrNotFound = errors.New("Cache not found")
)

// Codec turns values into the bytes a provider stores
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

type jsonCodec struct{}

func (jsonCodec) Encode(v interface{}) ([]byte, error)    { return json.Marshal(v) }
func (jsonCodec) Decode(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// JSON is the default codec
var JSON Codec = jsonCodec{}

type Service interface {
	// Get decodes the value under key into container, ErrNotFound on a miss
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl   time.Duration
	Pfx   string
	Cache provider.Provider
	Codec Codec
}

// Load returns the cached value under key, or calls load on a miss and
// caches its result. A broken cache falls through to load.
func Load[T any](c ctx.Ctx, svc Service, key string, load func() (T, error)) (T, error) {
	var cached T
	err := svc.Get(c, key, &cached)
	if err == nil {
		return cached, nil
	}
	if err != ErrNotFound {
		c.WithFields(log.Fields{"err": err, "key": key}).Warn("cache unusable, loading from source")
	}

	fresh, err := load()
	if err != nil {
		return fresh, err
	}
	if err := svc.Set(c, key, fresh); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Warn("cache fill failed")
	}
	return fresh, nil
}
