// Package memory keeps auctions and bids in process memory. It backs the
// memory store driver and the concurrency tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

// fault points accepted by InjectFault
const (
	OpAuctionInsert   = "auction.insert"
	OpAuctionUpdate   = "auction.update"
	OpAuctionFind     = "auction.find"
	OpBidInsert       = "bid.insert"
	OpBidFind         = "bid.find"
	OpBidUpdateStatus = "bid.updateStatus"
	OpBidRemove       = "bid.remove"
)

type bidRecord struct {
	bid *auction.Bid
	seq int64
}

type txKey struct{}

type tx struct {
	undo []func()
}

// Store implements auction.Repo, auction.BidRepo and auction.Transactor.
// Records are cloned on the way in and out.
type Store struct {
	mu       sync.RWMutex
	auctions map[string]*auction.Auction
	bids     map[string]*bidRecord
	seq      int64
	faults   map[string]error
}

func New() *Store {
	return &Store{
		auctions: make(map[string]*auction.Auction),
		bids:     make(map[string]*bidRecord),
		faults:   make(map[string]error),
	}
}

// InjectFault makes the next call of op fail with err
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// caller holds s.mu
func (s *Store) takeFault(op string) error {
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

func txFrom(c ctx.Ctx) *tx {
	t, _ := c.Value(txKey{}).(*tx)
	return t
}

// caller holds s.mu
func (s *Store) record(c ctx.Ctx, undo func()) {
	if t := txFrom(c); t != nil {
		t.undo = append(t.undo, undo)
	}
}

// RunWithTransaction rolls back every write made through the ctx passed to
// fn when fn fails. Nested calls join the outer transaction.
func (s *Store) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	if txFrom(c) != nil {
		return fn(c)
	}

	t := &tx{}
	txc := ctx.Ctx{
		Context: context.WithValue(c.Context, txKey{}, t),
		Logger:  c.Logger,
	}
	if err := fn(txc); err != nil {
		s.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) FindOne(c ctx.Ctx, id string) (*auction.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpAuctionFind); err != nil {
		return nil, err
	}
	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

func matchAuction(a *auction.Auction, opts auction.FindAllOptions) bool {
	if opts.Status != nil && a.Status != *opts.Status {
		return false
	}
	if opts.Category != nil && a.Category != *opts.Category {
		return false
	}
	if opts.Seller != nil && a.SellerId != *opts.Seller {
		return false
	}
	if opts.Keyword != nil && *opts.Keyword != "" {
		kw := strings.ToLower(*opts.Keyword)
		if !strings.Contains(strings.ToLower(a.Title), kw) && !strings.Contains(strings.ToLower(a.Description), kw) {
			return false
		}
	}
	if opts.StartTimeBefore != nil && a.StartTime.After(*opts.StartTimeBefore) {
		return false
	}
	if opts.EndTimeBefore != nil && a.EndTime.After(*opts.EndTimeBefore) {
		return false
	}
	if opts.EndTimeAfter != nil && !a.EndTime.After(*opts.EndTimeAfter) {
		return false
	}
	return true
}

func auctionLess(sortBy string, desc bool) func(a, b *auction.Auction) bool {
	cmp := func(a, b *auction.Auction) int {
		switch sortBy {
		case "startTime":
			return compareTime(a.StartTime.UnixNano(), b.StartTime.UnixNano())
		case "createdAt":
			return compareTime(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
		case "currentPrice":
			return a.CurrentPrice.Cmp(b.CurrentPrice)
		default:
			return compareTime(a.EndTime.UnixNano(), b.EndTime.UnixNano())
		}
	}
	return func(a, b *auction.Auction) bool {
		r := cmp(a, b)
		if desc {
			r = -r
		}
		if r != 0 {
			return r < 0
		}
		return a.Id < b.Id
	}
}

func compareTime(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate(n int, offset, limit *int) (int, int) {
	from, to := 0, n
	if offset != nil {
		from = *offset
	}
	if from > n {
		from = n
	}
	if limit != nil && *limit > 0 && from+*limit < to {
		to = from + *limit
	}
	return from, to
}

func (s *Store) FindAll(c ctx.Ctx, optFns ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpAuctionFind); err != nil {
		return nil, err
	}

	res := []*auction.Auction{}
	for _, a := range s.auctions {
		if matchAuction(a, opts) {
			res = append(res, a.Clone())
		}
	}

	sortBy, desc := "endTime", false
	if opts.SortBy != nil {
		sortBy = *opts.SortBy
		desc = opts.SortDir != nil && *opts.SortDir == domain.SortDirDesc
	}
	less := auctionLess(sortBy, desc)
	sort.Slice(res, func(i, j int) bool { return less(res[i], res[j]) })

	from, to := paginate(len(res), opts.Offset, opts.Limit)
	return res[from:to], nil
}

func (s *Store) Count(c ctx.Ctx, optFns ...auction.FindAllOptionsFunc) (int, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.auctions {
		if matchAuction(a, opts) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Insert(c ctx.Ctx, a *auction.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpAuctionInsert); err != nil {
		return err
	}
	if _, ok := s.auctions[a.Id]; ok {
		return domain.ErrConflict
	}
	s.auctions[a.Id] = a.Clone()
	id := a.Id
	s.record(c, func() { delete(s.auctions, id) })
	return nil
}

func (s *Store) Update(c ctx.Ctx, a *auction.Auction, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpAuctionUpdate); err != nil {
		return err
	}
	prev, ok := s.auctions[a.Id]
	if !ok {
		return domain.ErrNotFound
	}
	if prev.Version != expectedVersion {
		return auction.NewVersionConflict(a.Id, expectedVersion)
	}

	next := a.Clone()
	next.Version = expectedVersion + 1
	s.auctions[a.Id] = next
	s.record(c, func() { s.auctions[prev.Id] = prev })
	a.Version = next.Version
	return nil
}

// Bids exposes the bid side of the store as an auction.BidRepo
func (s *Store) Bids() auction.BidRepo {
	return bidStore{s}
}

type bidStore struct {
	s *Store
}

func (b bidStore) Insert(c ctx.Ctx, bid *auction.Bid) error {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpBidInsert); err != nil {
		return err
	}
	if _, ok := s.bids[bid.Id]; ok {
		return domain.ErrConflict
	}
	s.seq++
	s.bids[bid.Id] = &bidRecord{bid: bid.Clone(), seq: s.seq}
	id := bid.Id
	s.record(c, func() { delete(s.bids, id) })
	return nil
}

func matchBid(b *auction.Bid, opts auction.BidFindAllOptions) bool {
	if opts.AuctionId != nil && b.AuctionId != *opts.AuctionId {
		return false
	}
	if opts.BidderId != nil && b.BidderId != *opts.BidderId {
		return false
	}
	if opts.Status != nil && b.Status != *opts.Status {
		return false
	}
	return true
}

// caller holds s.mu; newest first, then highest amount
func (s *Store) selectBids(opts auction.BidFindAllOptions) []*bidRecord {
	recs := []*bidRecord{}
	for _, r := range s.bids {
		if matchBid(r.bid, opts) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.bid.BidTime.Equal(b.bid.BidTime) {
			return a.bid.BidTime.After(b.bid.BidTime)
		}
		if c := a.bid.Amount.Cmp(b.bid.Amount); c != 0 {
			return c > 0
		}
		return a.seq > b.seq
	})
	return recs
}

func (b bidStore) FindAll(c ctx.Ctx, optFns ...auction.BidFindAllOptionsFunc) ([]*auction.Bid, error) {
	opts, err := auction.GetBidFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpBidFind); err != nil {
		return nil, err
	}

	recs := s.selectBids(opts)
	from, to := paginate(len(recs), opts.Offset, opts.Limit)
	res := make([]*auction.Bid, 0, to-from)
	for _, r := range recs[from:to] {
		res = append(res, r.bid.Clone())
	}
	return res, nil
}

func (b bidStore) Count(c ctx.Ctx, optFns ...auction.BidFindAllOptionsFunc) (int, error) {
	opts, err := auction.GetBidFindAllOptions(optFns...)
	if err != nil {
		return 0, err
	}
	s := b.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.bids {
		if matchBid(r.bid, opts) {
			n++
		}
	}
	return n, nil
}

func (b bidStore) FindWinning(c ctx.Ctx, auctionId string) (*auction.Bid, error) {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpBidFind); err != nil {
		return nil, err
	}

	var best *auction.Bid
	for _, r := range s.bids {
		if r.bid.AuctionId != auctionId || r.bid.Status != auction.BidStatusWinning {
			continue
		}
		if best == nil || r.bid.Amount.GreaterThan(best.Amount) {
			best = r.bid
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best.Clone(), nil
}

func (b bidStore) UpdateStatus(c ctx.Ctx, id string, status auction.BidStatus) error {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpBidUpdateStatus); err != nil {
		return err
	}
	r, ok := s.bids[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := r.bid
	next := prev.Clone()
	next.Status = status
	r.bid = next
	s.record(c, func() { r.bid = prev })
	return nil
}

func (b bidStore) Remove(c ctx.Ctx, id string) error {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFault(OpBidRemove); err != nil {
		return err
	}
	r, ok := s.bids[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.bids, id)
	s.record(c, func() { s.bids[id] = r })
	return nil
}
