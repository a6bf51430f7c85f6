package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
)

type BidStatus string

const (
	BidStatusActive  BidStatus = "ACTIVE"
	BidStatusOutbid  BidStatus = "OUTBID"
	BidStatusWinning BidStatus = "WINNING"
)

// Bid records are append-only; only Status ever changes.
type Bid struct {
	Id            string          `json:"id"`
	AuctionId     string          `json:"auctionId"`
	BidderId      string          `json:"bidderId"`
	Amount        decimal.Decimal `json:"amount"`
	BidTime       time.Time       `json:"bidTime"`
	OriginAddress string          `json:"originAddress,omitempty"`
	Status        BidStatus       `json:"status"`
}

func (b *Bid) Clone() *Bid {
	c := *b
	return &c
}

type BidRepo interface {
	Insert(c ctx.Ctx, b *Bid) error
	// FindAll returns bids newest first
	FindAll(c ctx.Ctx, opts ...BidFindAllOptionsFunc) ([]*Bid, error)
	Count(c ctx.Ctx, opts ...BidFindAllOptionsFunc) (int, error)
	// FindWinning returns the highest WINNING bid of an auction or ErrNotFound
	FindWinning(c ctx.Ctx, auctionId string) (*Bid, error)
	UpdateStatus(c ctx.Ctx, id string, status BidStatus) error
	// Remove deletes a bid that never became part of the auction.
	// ErrNotFound when id is unknown.
	Remove(c ctx.Ctx, id string) error
}

// MessageTypeBidUpdate tags bid events on the wire
const MessageTypeBidUpdate = "BID_UPDATE"

// BidAcceptedEvent is emitted once per accepted bid after arbitration
// releases the auction.
type BidAcceptedEvent struct {
	MessageType string          `json:"messageType"`
	AuctionId   string          `json:"auctionId"`
	BidId       string          `json:"bidId"`
	Amount      decimal.Decimal `json:"bidAmount"`
	Bidder      string          `json:"bidderName"`
	BidTime     time.Time       `json:"bidTime"`
}

func NewBidAcceptedEvent(b *Bid) BidAcceptedEvent {
	return BidAcceptedEvent{
		MessageType: MessageTypeBidUpdate,
		AuctionId:   b.AuctionId,
		BidId:       b.Id,
		Amount:      b.Amount,
		Bidder:      b.BidderId,
		BidTime:     b.BidTime,
	}
}

// Notifier takes bid events for downstream broadcast. Publish must not
// block the caller on delivery.
type Notifier interface {
	Publish(c ctx.Ctx, ev BidAcceptedEvent)
}
