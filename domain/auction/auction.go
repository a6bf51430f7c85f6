package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusEnded     Status = "ENDED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusEnded, StatusCancelled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusEnded, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// CanTransitTo reports whether the lifecycle allows moving from s to next
func (s Status) CanTransitTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// DefaultBidIncrement applies when a seller does not set one
var DefaultBidIncrement = decimal.NewFromInt(1)

type Auction struct {
	Id            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	StartingPrice decimal.Decimal  `json:"startingPrice"`
	CurrentPrice  decimal.Decimal  `json:"currentPrice"`
	ReservePrice  *decimal.Decimal `json:"reservePrice,omitempty"`
	BidIncrement  decimal.Decimal  `json:"bidIncrement"`
	StartTime     time.Time        `json:"startTime"`
	EndTime       time.Time        `json:"endTime"`
	Status        Status           `json:"status"`
	SellerId      string           `json:"sellerId"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// IsOpen reports whether bids are accepted at now
func (a *Auction) IsOpen(now time.Time) bool {
	return a.Status == StatusActive && now.Before(a.EndTime)
}

// MinimumNextBid is the lowest amount a challenger may offer
func (a *Auction) MinimumNextBid() decimal.Decimal {
	return a.CurrentPrice.Add(a.BidIncrement)
}

// HasReachedReserve is informational and never blocks bidding or closing.
func (a *Auction) HasReachedReserve() bool {
	return a.ReservePrice == nil || a.CurrentPrice.GreaterThanOrEqual(*a.ReservePrice)
}

// DueForActivation reports a PENDING auction whose start time has arrived.
func (a *Auction) DueForActivation(now time.Time) bool {
	return a.Status == StatusPending && !now.Before(a.StartTime)
}

// DueForClosing reports an ACTIVE auction whose end time has elapsed.
func (a *Auction) DueForClosing(now time.Time) bool {
	return a.Status == StatusActive && !now.Before(a.EndTime)
}

func (a *Auction) Clone() *Auction {
	c := *a
	if a.ReservePrice != nil {
		r := *a.ReservePrice
		c.ReservePrice = &r
	}
	return &c
}

type CreateParams struct {
	Title         string
	Description   string
	Category      string
	StartingPrice decimal.Decimal
	ReservePrice  *decimal.Decimal
	BidIncrement  *decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
	SellerId      string
}

// SaleResult describes how an ENDED auction concluded
type SaleResult struct {
	AuctionId  string          `json:"auctionId"`
	Status     Status          `json:"status"`
	Sold       bool            `json:"sold"`
	ReserveMet bool            `json:"reserveMet"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
	WinningBid *Bid            `json:"winningBid,omitempty"`
}

// SystemStatus is a point-in-time view of the engine
type SystemStatus struct {
	Maintenance     bool             `json:"maintenance"`
	LastSweepTime   *time.Time       `json:"lastSweepTime,omitempty"`
	TotalActiveBids int64            `json:"totalActiveBids"`
	TrackedAuctions int              `json:"trackedAuctions"`
	CategoryCounts  map[string]int64 `json:"categoryCounts"`
	ServerTime      time.Time        `json:"serverTime"`
}

type Repo interface {
	FindOne(c ctx.Ctx, id string) (*Auction, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Auction, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Insert(c ctx.Ctx, a *Auction) error
	// Update replaces the stored auction when its version equals
	// expectedVersion and bumps a.Version. ErrVersionConflict otherwise.
	Update(c ctx.Ctx, a *Auction, expectedVersion int64) error
}

// Transactor runs fn as one logical unit when the store supports it.
type Transactor interface {
	RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error
}

// UseCase is the engine surface offered to the request layer.
type UseCase interface {
	Create(c ctx.Ctx, p CreateParams) (*Auction, error)
	FindOne(c ctx.Ctx, id string) (*Auction, error)
	GetActive(c ctx.Ctx) ([]*Auction, error)
	GetByCategory(c ctx.Ctx, category string) ([]*Auction, error)
	GetEndingSoon(c ctx.Ctx, within time.Duration) ([]*Auction, error)
	Search(c ctx.Ctx, keyword, category string, limit int) ([]*Auction, error)
	GetSaleResult(c ctx.Ctx, id string) (*SaleResult, error)

	SubmitBid(c ctx.Ctx, auctionId, bidderId string, amount decimal.Decimal, originAddress string) (*Bid, error)
	GetMinimumNextBid(c ctx.Ctx, auctionId string) (decimal.Decimal, error)
	GetHighestBid(c ctx.Ctx, auctionId string) (*Bid, error)
	GetBids(c ctx.Ctx, auctionId string, offset, limit int) ([]*Bid, int, error)
	GetBidsByBidder(c ctx.Ctx, bidderId string) ([]*Bid, error)

	Activate(c ctx.Ctx, id string) (*Auction, error)
	Close(c ctx.Ctx, id string) (*Auction, error)
	Cancel(c ctx.Ctx, id string) (*Auction, error)
	// PruneIfInactive drops the registry entry of id unless the auction is
	// still ACTIVE. It reports whether an entry was dropped.
	PruneIfInactive(c ctx.Ctx, id string) (bool, error)

	GetBidCount(c ctx.Ctx, auctionId string) int64
	GetCategoryCounts(c ctx.Ctx) map[string]int64
	IsMaintenance(c ctx.Ctx) bool
	SetMaintenance(c ctx.Ctx, on bool)
	Status(c ctx.Ctx) *SystemStatus
}

// Lifecycle is what the periodic sweeper drives. Each call takes the
// auction's critical section, so a transition is never half visible to a
// concurrent arbitration.
type Lifecycle interface {
	// ListDue returns PENDING auctions whose start time has arrived and
	// ACTIVE auctions whose end time has elapsed
	ListDue(c ctx.Ctx, now time.Time) (toActivate []string, toClose []string, err error)
	// ActivateIfDue reports ended as well when the auction was closed in
	// the same step because its end time had already passed
	ActivateIfDue(c ctx.Ctx, id string, now time.Time) (activated bool, ended bool, err error)
	CloseIfDue(c ctx.Ctx, id string, now time.Time) (bool, error)
	PruneIfInactive(c ctx.Ctx, id string) (bool, error)
}
