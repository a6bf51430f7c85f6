package statistic

import (
	"time"

	bCtx "github.com/x-xyz/goauction/base/ctx"
)

// Registry holds derived counters for high-frequency reads. It is never the
// source of truth and can be rebuilt from the store at any time.
type Registry interface {
	IncrementBidCount(auctionId string) int64
	// GetBidCount returns 0 for untracked auctions
	GetBidCount(auctionId string) int64
	IncrementCategoryCounter(category string) int64
	// GetCategoryCounts returns a snapshot the caller owns
	GetCategoryCounts() map[string]int64
	SetMaintenance(on bool)
	IsMaintenance() bool
	// PruneAuction drops the bid-count entry and reports whether one existed
	PruneAuction(auctionId string) bool

	TrackedAuctions() []string
	TotalActiveBids() int64
	MarkSweep(t time.Time)
	LastSweepTime() (time.Time, bool)

	// Rebuild replaces every counter with values derived from the store.
	// The maintenance flag is kept.
	Rebuild(ctx bCtx.Ctx) error
	// Clear drops every counter and resets the maintenance flag
	Clear()
}

// Source derives registry state from persisted auctions and bids.
type Source interface {
	// CountActiveByCategory counts ACTIVE auctions per category
	CountActiveByCategory(ctx bCtx.Ctx) (map[string]int64, error)
	// CountBidsOfActive counts persisted bids per ACTIVE auction
	CountBidsOfActive(ctx bCtx.Ctx) (map[string]int64, error)
}
