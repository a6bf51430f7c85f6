package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/goauction/base/ctx"
)

const (
	// Forever keeps a key without expiry
	Forever time.Duration = -1
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")
)

// Service is the redis surface used by caches, notifications and health checks
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, keys ...string) (int, error)
	// TTL returns the remaining seconds; -1 for no expiry, ErrNotFound for a missing key
	TTL(context ctx.Ctx, key string) (int, error)
	// Publish returns the number of subscribers that received msg
	Publish(context ctx.Ctx, channel string, msg []byte) (int, error)
	Ping(context ctx.Ctx) error
}
