package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/xerrors"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/service/redis"
)

const probeTtl = 30 * time.Second

type mongoProbe struct {
	client *mongoclient.Client
}

// NewMongoProbe pings the primary of the auction store
func NewMongoProbe(client *mongoclient.Client) hcdomain.Probe {
	return &mongoProbe{client: client}
}

func (p *mongoProbe) Name() string {
	return "mongo"
}

func (p *mongoProbe) Ping(c ctx.Ctx) error {
	if err := p.client.Ping(c, readpref.Primary()); err != nil {
		return xerrors.Errorf("ping mongo: %w", err)
	}
	return nil
}

type redisProbe struct {
	redis redis.Service
}

// NewRedisProbe pings redis and writes a short lived key, a replica that
// answers pings but refuses writes is reported down.
func NewRedisProbe(r redis.Service) hcdomain.Probe {
	return &redisProbe{redis: r}
}

func (p *redisProbe) Name() string {
	return "redis"
}

func (p *redisProbe) Ping(c ctx.Ctx) error {
	if err := p.redis.Ping(c); err != nil {
		return xerrors.Errorf("ping redis: %w", err)
	}
	if err := p.redis.Set(c, keys.HealthCheckProbe(), []byte(time.Now().UTC().Format(time.RFC3339)), probeTtl); err != nil {
		return xerrors.Errorf("write redis: %w", err)
	}
	return nil
}
