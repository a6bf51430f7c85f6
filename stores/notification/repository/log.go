package repository

import (
	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/notification"
)

type logSink struct{}

// NewLogSink writes events to the process log
func NewLogSink() notification.Sink {
	return logSink{}
}

func (logSink) Deliver(ctx bCtx.Ctx, ev auction.BidAcceptedEvent) error {
	ctx.WithFields(log.Fields{
		"messageType": ev.MessageType,
		"auctionId":   ev.AuctionId,
		"bidId":       ev.BidId,
		"bidAmount":   ev.Amount.String(),
		"bidderName":  ev.Bidder,
		"bidTime":     ev.BidTime,
	}).Info("bid accepted event")
	return nil
}
