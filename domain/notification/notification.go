package notification

import (
	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/auction"
)

// Sink delivers one event to a downstream channel
type Sink interface {
	Deliver(ctx bCtx.Ctx, ev auction.BidAcceptedEvent) error
}
