package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

type storeSuite struct {
	suite.Suite
	ctx   bCtx.Ctx
	store *Store
	now   time.Time
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeSuite))
}

func (s *storeSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.store = New()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *storeSuite) newAuction(id, category string, status auction.Status, end time.Duration) *auction.Auction {
	a := &auction.Auction{
		Id:            id,
		Title:         "Vintage " + id,
		Description:   "a fine " + category,
		Category:      category,
		StartingPrice: decimal.NewFromInt(100),
		CurrentPrice:  decimal.NewFromInt(100),
		BidIncrement:  decimal.NewFromInt(10),
		StartTime:     s.now.Add(-time.Hour),
		EndTime:       s.now.Add(end),
		Status:        status,
		SellerId:      "seller",
	}
	s.Require().NoError(s.store.Insert(s.ctx, a))
	return a
}

func (s *storeSuite) TestInsertAndFindOne() {
	a := s.newAuction("a1", "art", auction.StatusActive, time.Hour)

	got, err := s.store.FindOne(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(a, got)

	got.Title = "changed"
	again, _ := s.store.FindOne(s.ctx, "a1")
	s.Equal("Vintage a1", again.Title)

	_, err = s.store.FindOne(s.ctx, "missing")
	s.Equal(domain.ErrNotFound, err)

	s.Equal(domain.ErrConflict, s.store.Insert(s.ctx, a))
}

func (s *storeSuite) TestUpdateChecksVersion() {
	a := s.newAuction("a1", "art", auction.StatusActive, time.Hour)

	next := a.Clone()
	next.CurrentPrice = decimal.NewFromInt(150)
	s.Require().NoError(s.store.Update(s.ctx, next, 0))
	s.Equal(int64(1), next.Version)

	stale := a.Clone()
	stale.CurrentPrice = decimal.NewFromInt(120)
	err := s.store.Update(s.ctx, stale, 0)
	s.True(errors.Is(err, auction.ErrVersionConflict))
	s.True(errors.Is(err, auction.ErrStateConflict))

	got, _ := s.store.FindOne(s.ctx, "a1")
	s.True(got.CurrentPrice.Equal(decimal.NewFromInt(150)))

	missing := a.Clone()
	missing.Id = "nope"
	s.Equal(domain.ErrNotFound, s.store.Update(s.ctx, missing, 0))
}

func (s *storeSuite) TestFindAllFilters() {
	s.newAuction("a1", "art", auction.StatusActive, 3*time.Hour)
	s.newAuction("a2", "art", auction.StatusActive, time.Hour)
	s.newAuction("a3", "cars", auction.StatusActive, 2*time.Hour)
	s.newAuction("a4", "art", auction.StatusPending, time.Hour)

	ids := func(as []*auction.Auction) []string {
		res := []string{}
		for _, a := range as {
			res = append(res, a.Id)
		}
		return res
	}

	res, err := s.store.FindAll(s.ctx, auction.WithStatus(auction.StatusActive))
	s.Require().NoError(err)
	s.Equal([]string{"a2", "a3", "a1"}, ids(res))

	res, err = s.store.FindAll(s.ctx, auction.WithStatus(auction.StatusActive), auction.WithCategory("art"))
	s.Require().NoError(err)
	s.Equal([]string{"a2", "a1"}, ids(res))

	res, err = s.store.FindAll(s.ctx, auction.WithKeyword("VINTAGE A3"))
	s.Require().NoError(err)
	s.Equal([]string{"a3"}, ids(res))

	res, err = s.store.FindAll(s.ctx,
		auction.WithStatus(auction.StatusActive),
		auction.WithEndTimeAfter(s.now),
		auction.WithEndTimeBefore(s.now.Add(2*time.Hour)),
	)
	s.Require().NoError(err)
	s.Equal([]string{"a2", "a3"}, ids(res))

	res, err = s.store.FindAll(s.ctx, auction.WithSort("endTime", domain.SortDirDesc), auction.WithPagination(1, 2))
	s.Require().NoError(err)
	s.Equal([]string{"a3", "a2"}, ids(res))

	n, err := s.store.Count(s.ctx, auction.WithCategory("art"))
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *storeSuite) insertBid(id, auctionId string, amount int64, at time.Duration, status auction.BidStatus) {
	s.Require().NoError(s.store.Bids().Insert(s.ctx, &auction.Bid{
		Id:        id,
		AuctionId: auctionId,
		BidderId:  "bidder-" + id,
		Amount:    decimal.NewFromInt(amount),
		BidTime:   s.now.Add(at),
		Status:    status,
	}))
}

func (s *storeSuite) TestBidsNewestFirstAndWinning() {
	bids := s.store.Bids()
	s.insertBid("b1", "a1", 110, time.Second, auction.BidStatusOutbid)
	s.insertBid("b2", "a1", 120, 2*time.Second, auction.BidStatusWinning)
	s.insertBid("b3", "a2", 500, 3*time.Second, auction.BidStatusWinning)

	res, err := bids.FindAll(s.ctx, auction.BidWithAuctionId("a1"))
	s.Require().NoError(err)
	s.Require().Len(res, 2)
	s.Equal("b2", res[0].Id)
	s.Equal("b1", res[1].Id)

	res, err = bids.FindAll(s.ctx, auction.BidWithAuctionId("a1"), auction.BidWithPagination(1, 1))
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal("b1", res[0].Id)

	w, err := bids.FindWinning(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal("b2", w.Id)

	_, err = bids.FindWinning(s.ctx, "a3")
	s.Equal(domain.ErrNotFound, err)

	s.Require().NoError(bids.UpdateStatus(s.ctx, "b2", auction.BidStatusOutbid))
	_, err = bids.FindWinning(s.ctx, "a1")
	s.Equal(domain.ErrNotFound, err)
	s.Equal(domain.ErrNotFound, bids.UpdateStatus(s.ctx, "nope", auction.BidStatusOutbid))

	n, err := bids.Count(s.ctx, auction.BidWithStatus(auction.BidStatusOutbid))
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *storeSuite) TestTransactionRollsBack() {
	a := s.newAuction("a1", "art", auction.StatusActive, time.Hour)
	s.insertBid("b1", "a1", 110, time.Second, auction.BidStatusWinning)
	failure := errors.New("boom")

	err := s.store.RunWithTransaction(s.ctx, func(c bCtx.Ctx) error {
		s.Require().NoError(s.store.Bids().Insert(c, &auction.Bid{Id: "b2", AuctionId: "a1", Amount: decimal.NewFromInt(200), Status: auction.BidStatusActive}))
		next := a.Clone()
		next.CurrentPrice = decimal.NewFromInt(200)
		s.Require().NoError(s.store.Update(c, next, 0))
		s.Require().NoError(s.store.Bids().UpdateStatus(c, "b1", auction.BidStatusOutbid))
		return failure
	})
	s.Equal(failure, err)

	got, _ := s.store.FindOne(s.ctx, "a1")
	s.True(got.CurrentPrice.Equal(decimal.NewFromInt(100)))
	s.Equal(int64(0), got.Version)

	w, err := s.store.Bids().FindWinning(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal("b1", w.Id)

	n, _ := s.store.Bids().Count(s.ctx, auction.BidWithAuctionId("a1"))
	s.Equal(1, n)
}

func (s *storeSuite) TestRemoveBid() {
	bids := s.store.Bids()
	s.insertBid("b1", "a1", 110, time.Second, auction.BidStatusWinning)
	s.insertBid("b2", "a1", 120, 2*time.Second, auction.BidStatusActive)

	err := s.store.RunWithTransaction(s.ctx, func(c bCtx.Ctx) error {
		s.Require().NoError(bids.Remove(c, "b2"))
		return errors.New("abort")
	})
	s.Error(err)
	n, _ := bids.Count(s.ctx, auction.BidWithAuctionId("a1"))
	s.Equal(2, n)

	s.Require().NoError(bids.Remove(s.ctx, "b2"))
	s.Equal(domain.ErrNotFound, bids.Remove(s.ctx, "b2"))
	res, err := bids.FindAll(s.ctx, auction.BidWithAuctionId("a1"))
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal("b1", res[0].Id)
}

func (s *storeSuite) TestTransactionCommits() {
	a := s.newAuction("a1", "art", auction.StatusActive, time.Hour)
	err := s.store.RunWithTransaction(s.ctx, func(c bCtx.Ctx) error {
		next := a.Clone()
		next.CurrentPrice = decimal.NewFromInt(300)
		return s.store.Update(c, next, 0)
	})
	s.Require().NoError(err)

	got, _ := s.store.FindOne(s.ctx, "a1")
	s.True(got.CurrentPrice.Equal(decimal.NewFromInt(300)))
}

func (s *storeSuite) TestInjectFaultIsOneShot() {
	failure := errors.New("disk on fire")
	s.store.InjectFault(OpAuctionFind, failure)

	_, err := s.store.FindOne(s.ctx, "a1")
	s.Equal(failure, err)
	_, err = s.store.FindOne(s.ctx, "a1")
	s.Equal(domain.ErrNotFound, err)
}
