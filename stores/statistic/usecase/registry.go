package usecase

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/counter"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/statistic"
)

type registry struct {
	// mu guards the maps, not the counters inside them
	mu         sync.RWMutex
	bids       map[string]*counter.Counter
	categories map[string]*counter.Counter

	maintenance atomic.Bool
	// unix nanos of the last sweep, 0 before the first one
	lastSweep atomic.Int64

	source statistic.Source
}

func New(source statistic.Source) statistic.Registry {
	return &registry{
		bids:       make(map[string]*counter.Counter),
		categories: make(map[string]*counter.Counter),
		source:     source,
	}
}

// counterOf reads *m under mu since Rebuild swaps the maps
func (r *registry) counterOf(m *map[string]*counter.Counter, key string) *counter.Counter {
	r.mu.RLock()
	c, ok := (*m)[key]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := (*m)[key]; ok {
		return c
	}
	c = counter.NewCounter()
	(*m)[key] = c
	return c
}

func (r *registry) IncrementBidCount(auctionId string) int64 {
	return int64(r.counterOf(&r.bids, auctionId).Inc())
}

func (r *registry) GetBidCount(auctionId string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.bids[auctionId]; ok {
		return int64(c.Count())
	}
	return 0
}

func (r *registry) IncrementCategoryCounter(category string) int64 {
	return int64(r.counterOf(&r.categories, category).Inc())
}

func (r *registry) GetCategoryCounts() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[string]int64, len(r.categories))
	for k, c := range r.categories {
		res[k] = int64(c.Count())
	}
	return res
}

func (r *registry) SetMaintenance(on bool) {
	r.maintenance.Store(on)
}

func (r *registry) IsMaintenance() bool {
	return r.maintenance.Load()
}

func (r *registry) PruneAuction(auctionId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bids[auctionId]; !ok {
		return false
	}
	delete(r.bids, auctionId)
	return true
}

func (r *registry) TrackedAuctions() []string {
	r.mu.RLock()
	res := make([]string, 0, len(r.bids))
	for id := range r.bids {
		res = append(res, id)
	}
	r.mu.RUnlock()
	sort.Strings(res)
	return res
}

func (r *registry) TotalActiveBids() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := int64(0)
	for _, c := range r.bids {
		total += int64(c.Count())
	}
	return total
}

func (r *registry) MarkSweep(t time.Time) {
	r.lastSweep.Store(t.UnixNano())
}

func (r *registry) LastSweepTime() (time.Time, bool) {
	n := r.lastSweep.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

func (r *registry) Rebuild(ctx bCtx.Ctx) error {
	categories, err := r.source.CountActiveByCategory(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("source.CountActiveByCategory failed")
		return err
	}
	bids, err := r.source.CountBidsOfActive(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("source.CountBidsOfActive failed")
		return err
	}

	newCategories := make(map[string]*counter.Counter, len(categories))
	for k, v := range categories {
		newCategories[k] = counter.NewCounterFrom(int(v))
	}
	newBids := make(map[string]*counter.Counter, len(bids))
	for k, v := range bids {
		newBids[k] = counter.NewCounterFrom(int(v))
	}

	r.mu.Lock()
	r.categories = newCategories
	r.bids = newBids
	r.mu.Unlock()

	ctx.WithFields(log.Fields{
		"categories": len(newCategories),
		"auctions":   len(newBids),
	}).Info("registry rebuilt")
	return nil
}

func (r *registry) Clear() {
	r.mu.Lock()
	r.bids = make(map[string]*counter.Counter)
	r.categories = make(map[string]*counter.Counter)
	r.mu.Unlock()
	r.maintenance.Store(false)
	r.lastSweep.Store(0)
}
