package repository

import (
	"encoding/json"

	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/domain/notification"
	"github.com/x-xyz/goauction/service/redis"
)

type redisSink struct {
	redis   redis.Service
	channel string
}

// NewRedisSink publishes events on channel, or on a per auction channel
// "bids:<auctionId>" when channel is empty.
func NewRedisSink(r redis.Service, channel string) notification.Sink {
	return &redisSink{redis: r, channel: channel}
}

func (s *redisSink) channelOf(ev auction.BidAcceptedEvent) string {
	if s.channel != "" {
		return s.channel
	}
	return keys.BidChannel(ev.AuctionId)
}

func (s *redisSink) Deliver(ctx bCtx.Ctx, ev auction.BidAcceptedEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return xerrors.Errorf("marshal event: %w", err)
	}

	channel := s.channelOf(ev)
	n, err := s.redis.Publish(ctx, channel, msg)
	if err != nil {
		return xerrors.Errorf("publish to %s: %w", channel, err)
	}
	ctx.WithFields(log.Fields{"channel": channel, "receivers": n, "bidId": ev.BidId}).Debug("event published")
	return nil
}
