package cache

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/service/cache/provider"
)

type impl struct {
	cfg ServiceConfig
}

func New(cfg ServiceConfig) Service {
	if cfg.Codec == nil {
		cfg.Codec = JSON
	}
	return &impl{cfg: cfg}
}

func (im *impl) fullKey(key string) string {
	if im.cfg.Pfx == "" {
		return key
	}
	return keys.RedisKey(im.cfg.Pfx, key)
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	full := im.fullKey(key)
	raw, _, err := im.cfg.Cache.Get(c, full)
	switch {
	case err == provider.ErrNotFound:
		return ErrNotFound
	case err != nil:
		c.WithFields(log.Fields{"err": err, "key": full}).Error("provider.Get failed")
		return err
	}
	if err := im.cfg.Codec.Decode(raw, container); err != nil {
		c.WithFields(log.Fields{"err": err, "key": full}).Error("Codec.Decode failed")
		return err
	}
	return nil
}

func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	full := im.fullKey(key)
	raw, err := im.cfg.Codec.Encode(value)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": full}).Error("Codec.Encode failed")
		return err
	}
	if err := im.cfg.Cache.Set(c, full, raw, im.cfg.Ttl); err != nil {
		c.WithFields(log.Fields{"err": err, "key": full}).Error("provider.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	full := im.fullKey(key)
	if err := im.cfg.Cache.Del(c, full); err != nil {
		c.WithFields(log.Fields{"err": err, "key": full}).Error("provider.Del failed")
		return err
	}
	return nil
}
