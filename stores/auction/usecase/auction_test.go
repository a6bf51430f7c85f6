package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/lifecycle"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/base/ptr"
	"github.com/x-xyz/goauction/domain/auction"
	aMocks "github.com/x-xyz/goauction/domain/auction/mocks"
	"github.com/x-xyz/goauction/domain/statistic"
	"github.com/x-xyz/goauction/service/cache"
	"github.com/x-xyz/goauction/service/cache/provider/primitive"
	"github.com/x-xyz/goauction/stores/auction/repository/memory"
	statRepo "github.com/x-xyz/goauction/stores/statistic/repository"
	statUsecase "github.com/x-xyz/goauction/stores/statistic/usecase"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type auctionSuite struct {
	suite.Suite
	ctx      bCtx.Ctx
	now      time.Time
	store    *memory.Store
	registry statistic.Registry
	notifier *aMocks.Notifier
	cfg      *AuctionUseCaseCfg
	uc       auction.UseCase
	lc       auction.Lifecycle
}

func TestAuctionSuite(t *testing.T) {
	suite.Run(t, new(auctionSuite))
}

func (s *auctionSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.store = memory.New()
	s.registry = statUsecase.New(statRepo.NewRepoSource(s.store, s.store.Bids()))
	s.notifier = &aMocks.Notifier{}
	s.notifier.On("Publish", mock.Anything, mock.Anything).Maybe()
	s.cfg = &AuctionUseCaseCfg{
		AuctionRepo:      s.store,
		BidRepo:          s.store.Bids(),
		Transactor:       s.store,
		Registry:         s.registry,
		Notifier:         s.notifier,
		Clock:            func() time.Time { return s.now },
		Metrics:          metrics.NewNop(),
		InlineActivation: true,
	}
	s.build()
}

func (s *auctionSuite) build() {
	s.uc = New(s.cfg)
	s.lc = NewLifecycle(s.cfg)
}

// seed stores an auction as if it had been created and activated earlier
func (s *auctionSuite) seed(id string, status auction.Status, start, end time.Duration) *auction.Auction {
	a := &auction.Auction{
		Id:            id,
		Title:         "Lot " + id,
		Description:   "pocket watch",
		Category:      "watches",
		StartingPrice: dec("100.00"),
		CurrentPrice:  dec("100.00"),
		BidIncrement:  dec("5.00"),
		StartTime:     s.now.Add(start),
		EndTime:       s.now.Add(end),
		Status:        status,
		SellerId:      "seller",
	}
	s.Require().NoError(s.store.Insert(s.ctx, a))
	return a
}

func (s *auctionSuite) bidStatuses(auctionId string) map[string]auction.BidStatus {
	bids, err := s.store.Bids().FindAll(s.ctx, auction.BidWithAuctionId(auctionId))
	s.Require().NoError(err)
	res := map[string]auction.BidStatus{}
	for _, b := range bids {
		res[b.Id] = b.Status
	}
	return res
}

func (s *auctionSuite) currentPrice(id string) decimal.Decimal {
	a, err := s.store.FindOne(s.ctx, id)
	s.Require().NoError(err)
	return a.CurrentPrice
}

func (s *auctionSuite) TestIncrementScenario() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)

	bidA, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("105.00"), "10.0.0.1")
	s.Require().NoError(err)
	s.Equal(auction.BidStatusWinning, bidA.Status)
	s.True(s.currentPrice("a1").Equal(dec("105.00")))

	_, err = s.uc.SubmitBid(s.ctx, "a1", "bob", dec("103.00"), "10.0.0.2")
	s.True(errors.Is(err, auction.ErrBidTooLow))
	s.True(errors.Is(err, auction.ErrStateConflict))
	s.Equal("Bid amount must be at least 110.00", err.Error())
	var rejection *auction.Error
	s.Require().True(errors.As(err, &rejection))
	s.True(rejection.MinimumBid.Equal(dec("110.00")))

	bidC, err := s.uc.SubmitBid(s.ctx, "a1", "carol", dec("110.00"), "10.0.0.3")
	s.Require().NoError(err)
	s.True(s.currentPrice("a1").Equal(dec("110.00")))

	s.Equal(map[string]auction.BidStatus{
		bidA.Id: auction.BidStatusOutbid,
		bidC.Id: auction.BidStatusWinning,
	}, s.bidStatuses("a1"))

	highest, err := s.uc.GetHighestBid(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(bidC.Id, highest.Id)

	minimum, err := s.uc.GetMinimumNextBid(s.ctx, "a1")
	s.Require().NoError(err)
	s.True(minimum.Equal(dec("115.00")))

	s.Equal(int64(2), s.uc.GetBidCount(s.ctx, "a1"))
	s.notifier.AssertNumberOfCalls(s.T(), "Publish", 2)
}

func (s *auctionSuite) TestSelfBidForbidden() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)

	_, err := s.uc.SubmitBid(s.ctx, "a1", "seller", dec("500"), "")
	s.True(errors.Is(err, auction.ErrSelfBidForbidden))
	s.Equal(auction.KindStateConflict, auction.KindOf(err))
	s.True(s.currentPrice("a1").Equal(dec("100.00")))
	s.Empty(s.bidStatuses("a1"))
	s.notifier.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *auctionSuite) TestPreconditionOrder() {
	s.seed("ended", auction.StatusEnded, -2*time.Hour, -time.Hour)

	s.uc.SetMaintenance(s.ctx, true)
	_, err := s.uc.SubmitBid(s.ctx, "missing", "alice", dec("1"), "")
	s.True(errors.Is(err, auction.ErrSystemUnavailable))
	s.uc.SetMaintenance(s.ctx, false)

	_, err = s.uc.SubmitBid(s.ctx, "missing", "alice", dec("1"), "")
	s.True(errors.Is(err, auction.ErrNotFound))

	// closed beats self bid and bid too low
	_, err = s.uc.SubmitBid(s.ctx, "ended", "seller", dec("1"), "")
	s.True(errors.Is(err, auction.ErrAuctionNotOpen))

	_, err = s.uc.SubmitBid(s.ctx, "ended", "alice", dec("-1"), "")
	s.True(errors.Is(err, auction.ErrValidation))
}

func (s *auctionSuite) TestBidAtEndTimeIsRejected() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	s.now = s.now.Add(time.Hour)

	_, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("200"), "")
	s.True(errors.Is(err, auction.ErrAuctionNotOpen))
}

func (s *auctionSuite) TestSweepClosesAndPrunes() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	bid, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("150"), "")
	s.Require().NoError(err)
	s.Equal(int64(1), s.uc.GetBidCount(s.ctx, "a1"))

	sweeper := lifecycle.NewSweeper(s.lc, s.registry).
		SetClock(func() time.Time { return s.now }).
		SetMetrics(metrics.NewNop())

	s.now = s.now.Add(2 * time.Hour)
	report, ran := sweeper.RunOnce(s.ctx)
	s.True(ran)
	s.Equal(lifecycle.Report{Ended: 1}, report)

	a, err := s.uc.FindOne(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(auction.StatusEnded, a.Status)
	s.Equal(int64(0), s.uc.GetBidCount(s.ctx, "a1"))

	_, err = s.uc.SubmitBid(s.ctx, "a1", "bob", dec("300"), "")
	s.True(errors.Is(err, auction.ErrAuctionNotOpen))

	result, err := s.uc.GetSaleResult(s.ctx, "a1")
	s.Require().NoError(err)
	s.True(result.Sold)
	s.Equal(bid.Id, result.WinningBid.Id)

	// nothing left to do
	report, ran = sweeper.RunOnce(s.ctx)
	s.True(ran)
	s.Equal(lifecycle.Report{}, report)

	status := s.uc.Status(s.ctx)
	s.Require().NotNil(status.LastSweepTime)
	s.True(s.now.Equal(*status.LastSweepTime))
}

func (s *auctionSuite) TestSweepActivatesPending() {
	s.seed("p1", auction.StatusPending, time.Minute, time.Hour)
	s.seed("p2", auction.StatusPending, -2*time.Hour, -time.Hour)
	sweeper := lifecycle.NewSweeper(s.lc, s.registry).
		SetClock(func() time.Time { return s.now }).
		SetMetrics(metrics.NewNop())

	report, _ := sweeper.RunOnce(s.ctx)
	s.Equal(lifecycle.Report{Activated: 1, Ended: 1}, report)

	p2, _ := s.uc.FindOne(s.ctx, "p2")
	s.Equal(auction.StatusEnded, p2.Status)

	s.now = s.now.Add(time.Minute)
	report, _ = sweeper.RunOnce(s.ctx)
	s.Equal(lifecycle.Report{Activated: 1}, report)
	p1, _ := s.uc.FindOne(s.ctx, "p1")
	s.Equal(auction.StatusActive, p1.Status)
}

func (s *auctionSuite) TestInlineActivation() {
	s.seed("p1", auction.StatusPending, -time.Minute, time.Hour)
	_, err := s.uc.SubmitBid(s.ctx, "p1", "alice", dec("105"), "")
	s.Require().NoError(err)
	a, _ := s.uc.FindOne(s.ctx, "p1")
	s.Equal(auction.StatusActive, a.Status)

	s.cfg.InlineActivation = false
	s.build()
	s.seed("p2", auction.StatusPending, -time.Minute, time.Hour)
	_, err = s.uc.SubmitBid(s.ctx, "p2", "alice", dec("105"), "")
	s.True(errors.Is(err, auction.ErrAuctionNotOpen))
}

func (s *auctionSuite) TestCreate() {
	params := func(start, length time.Duration) auction.CreateParams {
		return auction.CreateParams{
			Title:         "Bicycle",
			Description:   "steel frame",
			Category:      "sports",
			StartingPrice: dec("20"),
			StartTime:     s.now.Add(start),
			EndTime:       s.now.Add(start + length),
			SellerId:      "seller",
		}
	}

	for name, p := range map[string]auction.CreateParams{
		"start in past": params(-time.Second, 2*time.Hour),
		"end not after": params(time.Minute, 0),
		"too short":     params(time.Minute, 59*time.Minute),
		"too long":      params(time.Minute, 30*24*time.Hour),
	} {
		_, err := s.uc.Create(s.ctx, p)
		s.True(errors.Is(err, auction.ErrInvalidSchedule), name)
		s.True(errors.Is(err, auction.ErrValidation), name)
	}

	bad := params(time.Minute, time.Hour)
	bad.StartingPrice = decimal.Zero
	_, err := s.uc.Create(s.ctx, bad)
	s.True(errors.Is(err, auction.ErrInvalidAmount))

	a, err := s.uc.Create(s.ctx, params(time.Minute, time.Hour))
	s.Require().NoError(err)
	s.Equal(auction.StatusPending, a.Status)
	s.True(a.CurrentPrice.Equal(dec("20")))
	s.True(a.BidIncrement.Equal(auction.DefaultBidIncrement))

	withIncrement := params(0, 30*24*time.Hour-time.Second)
	withIncrement.BidIncrement = ptr.Decimal(dec("2.50"))
	b, err := s.uc.Create(s.ctx, withIncrement)
	s.Require().NoError(err)
	s.Equal(auction.StatusActive, b.Status)
	s.True(b.BidIncrement.Equal(dec("2.50")))

	s.Equal(map[string]int64{"sports": 2}, s.uc.GetCategoryCounts(s.ctx))

	s.uc.SetMaintenance(s.ctx, true)
	_, err = s.uc.Create(s.ctx, params(time.Minute, time.Hour))
	s.True(errors.Is(err, auction.ErrSystemUnavailable))
}

func (s *auctionSuite) TestConcurrentBidsOnOneAuction() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)

	const bidders = 64
	accepted := make(chan decimal.Decimal, bidders)
	wg := sync.WaitGroup{}
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			amount := decimal.NewFromInt(int64(105 + (i*37)%200))
			if _, err := s.uc.SubmitBid(s.ctx, "a1", fmt.Sprintf("bidder-%d", i), amount, ""); err == nil {
				accepted <- amount
			} else {
				s.True(errors.Is(err, auction.ErrBidTooLow), err.Error())
			}
		}(i)
	}
	wg.Wait()
	close(accepted)

	highest := decimal.Zero
	n := 0
	for a := range accepted {
		n++
		if a.GreaterThan(highest) {
			highest = a
		}
	}
	s.Require().Greater(n, 0)
	s.True(s.currentPrice("a1").Equal(highest))

	winning := 0
	for _, st := range s.bidStatuses("a1") {
		if st == auction.BidStatusWinning {
			winning++
		} else {
			s.Equal(auction.BidStatusOutbid, st)
		}
	}
	s.Equal(1, winning)
	s.Equal(int64(n), s.uc.GetBidCount(s.ctx, "a1"))
}

func (s *auctionSuite) TestAuctionsArbitrateIndependently() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	s.seed("a2", auction.StatusActive, -time.Hour, time.Hour)

	// hold a1 to show a2 does not wait for it
	unlock := s.cfg.Locks.Lock("a1")
	done := make(chan error, 1)
	go func() {
		_, err := s.uc.SubmitBid(s.ctx, "a2", "bob", dec("300"), "")
		done <- err
	}()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("a2 blocked by a1")
	}

	go func() {
		_, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("200"), "")
		done <- err
	}()
	unlock()
	s.NoError(<-done)

	s.True(s.currentPrice("a1").Equal(dec("200")))
	s.True(s.currentPrice("a2").Equal(dec("300")))
}

func (s *auctionSuite) TestStorageFailureIsReported() {
	s.cfg.Transactor = nil
	s.build()
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	first, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("105"), "")
	s.Require().NoError(err)

	s.store.InjectFault(memory.OpAuctionUpdate, errors.New("write timeout"))
	_, err = s.uc.SubmitBid(s.ctx, "a1", "bob", dec("150"), "")
	s.True(errors.Is(err, auction.ErrStorageFailure))

	s.True(s.currentPrice("a1").Equal(dec("105")))
	highest, err := s.uc.GetHighestBid(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(first.Id, highest.Id)
	s.Equal(int64(1), s.uc.GetBidCount(s.ctx, "a1"))

	bids, total, err := s.uc.GetBids(s.ctx, "a1", 0, 10)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(bids, 1)
	s.Equal(first.Id, bids[0].Id)
	s.Equal(map[string]auction.BidStatus{first.Id: auction.BidStatusWinning}, s.bidStatuses("a1"))

	rebuilt := statUsecase.New(statRepo.NewRepoSource(s.store, s.store.Bids()))
	s.Require().NoError(rebuilt.Rebuild(s.ctx))
	s.Equal(int64(1), rebuilt.GetBidCount("a1"))
}

func (s *auctionSuite) TestStrayBidIsSettledByNextBid() {
	s.cfg.Transactor = nil
	s.build()
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	first, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("105"), "")
	s.Require().NoError(err)

	s.store.InjectFault(memory.OpAuctionUpdate, errors.New("write timeout"))
	s.store.InjectFault(memory.OpBidRemove, errors.New("write timeout"))
	_, err = s.uc.SubmitBid(s.ctx, "a1", "bob", dec("150"), "")
	s.True(errors.Is(err, auction.ErrStorageFailure))

	highest, err := s.uc.GetHighestBid(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(first.Id, highest.Id)

	third, err := s.uc.SubmitBid(s.ctx, "a1", "carol", dec("110"), "")
	s.Require().NoError(err)
	for id, st := range s.bidStatuses("a1") {
		if id == third.Id {
			s.Equal(auction.BidStatusWinning, st)
		} else {
			s.Equal(auction.BidStatusOutbid, st)
		}
	}
	s.True(s.currentPrice("a1").Equal(dec("110")))
}

func (s *auctionSuite) TestReadRepair() {
	s.cfg.Transactor = nil
	s.build()
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	first, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("105"), "")
	s.Require().NoError(err)

	s.store.InjectFault(memory.OpBidUpdateStatus, errors.New("write timeout"))
	second, err := s.uc.SubmitBid(s.ctx, "a1", "bob", dec("110"), "")
	s.Require().NoError(err)
	s.True(s.currentPrice("a1").Equal(dec("110")))
	s.Equal(auction.BidStatusWinning, s.bidStatuses("a1")[first.Id])

	highest, err := s.uc.GetHighestBid(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(second.Id, highest.Id)
	s.Equal(map[string]auction.BidStatus{
		first.Id:  auction.BidStatusOutbid,
		second.Id: auction.BidStatusWinning,
	}, s.bidStatuses("a1"))
}

func (s *auctionSuite) TestTransactionRollsBackOnFailure() {
	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	first, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("105"), "")
	s.Require().NoError(err)

	s.store.InjectFault(memory.OpBidUpdateStatus, errors.New("write timeout"))
	_, err = s.uc.SubmitBid(s.ctx, "a1", "bob", dec("110"), "")
	s.True(errors.Is(err, auction.ErrStorageFailure))

	s.True(s.currentPrice("a1").Equal(dec("105")))
	s.Equal(map[string]auction.BidStatus{first.Id: auction.BidStatusWinning}, s.bidStatuses("a1"))
	s.Equal(int64(1), s.uc.GetBidCount(s.ctx, "a1"))
}

func (s *auctionSuite) TestAdminTransitions() {
	s.seed("p1", auction.StatusPending, time.Hour, 2*time.Hour)

	_, err := s.uc.Close(s.ctx, "p1")
	s.True(errors.Is(err, auction.ErrInvalidTransition))

	a, err := s.uc.Activate(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(auction.StatusActive, a.Status)

	_, err = s.uc.SubmitBid(s.ctx, "p1", "alice", dec("105"), "")
	s.Require().NoError(err)

	_, err = s.uc.GetSaleResult(s.ctx, "p1")
	s.True(errors.Is(err, auction.ErrNotEnded))

	a, err = s.uc.Cancel(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(auction.StatusCancelled, a.Status)
	s.Equal(int64(0), s.uc.GetBidCount(s.ctx, "p1"))

	_, err = s.uc.Cancel(s.ctx, "p1")
	s.True(errors.Is(err, auction.ErrInvalidTransition))

	_, err = s.uc.SubmitBid(s.ctx, "p1", "bob", dec("500"), "")
	s.True(errors.Is(err, auction.ErrAuctionNotOpen))

	_, err = s.uc.Cancel(s.ctx, "missing")
	s.True(errors.Is(err, auction.ErrNotFound))
}

func (s *auctionSuite) TestSaleResultWithReserve() {
	a := s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	reserve := dec("200")
	next := a.Clone()
	next.ReservePrice = &reserve
	s.Require().NoError(s.store.Update(s.ctx, next, a.Version))

	_, err := s.uc.SubmitBid(s.ctx, "a1", "alice", dec("150"), "")
	s.Require().NoError(err)
	_, err = s.uc.Close(s.ctx, "a1")
	s.Require().NoError(err)

	result, err := s.uc.GetSaleResult(s.ctx, "a1")
	s.Require().NoError(err)
	s.False(result.ReserveMet)
	s.False(result.Sold)
	s.NotNil(result.WinningBid)
	s.True(result.FinalPrice.Equal(dec("150")))
}

func (s *auctionSuite) TestQueries() {
	s.seed("a1", auction.StatusActive, -time.Hour, 30*time.Minute)
	s.seed("a2", auction.StatusActive, -time.Hour, 3*time.Hour)
	s.seed("p1", auction.StatusPending, time.Hour, 3*time.Hour)

	active, err := s.uc.GetActive(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	soon, err := s.uc.GetEndingSoon(s.ctx, time.Hour)
	s.Require().NoError(err)
	s.Require().Len(soon, 1)
	s.Equal("a1", soon[0].Id)

	_, err = s.uc.GetEndingSoon(s.ctx, 0)
	s.True(errors.Is(err, auction.ErrValidation))

	found, err := s.uc.Search(s.ctx, "LOT A2", "", 0)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("a2", found[0].Id)

	byCategory, err := s.uc.GetByCategory(s.ctx, "watches")
	s.Require().NoError(err)
	s.Len(byCategory, 2)

	for i := 0; i < 3; i++ {
		_, err := s.uc.SubmitBid(s.ctx, "a1", "alice", decimal.NewFromInt(int64(110+10*i)), "")
		s.Require().NoError(err)
		s.now = s.now.Add(time.Second)
	}
	bids, total, err := s.uc.GetBids(s.ctx, "a1", 0, 2)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(bids, 2)
	s.True(bids[0].Amount.Equal(dec("130")))

	_, _, err = s.uc.GetBids(s.ctx, "missing", 0, 2)
	s.True(errors.Is(err, auction.ErrNotFound))

	mine, err := s.uc.GetBidsByBidder(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(mine, 3)
}

func (s *auctionSuite) TestActiveListingCache() {
	s.cfg.Cache = cache.New(cache.ServiceConfig{
		Ttl:   time.Minute,
		Pfx:   "auction",
		Cache: primitive.NewPrimitive("listing", 1),
	})
	s.build()

	s.seed("a1", auction.StatusActive, -time.Hour, time.Hour)
	s.seed("a2", auction.StatusActive, -time.Hour, time.Hour)

	active, err := s.uc.GetActive(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	// written behind the engine, so the listing stays stale
	s.seed("a3", auction.StatusActive, -time.Hour, time.Hour)
	active, err = s.uc.GetActive(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	// a transition through the engine drops the cached listing
	_, err = s.uc.Cancel(s.ctx, "a1")
	s.Require().NoError(err)
	active, err = s.uc.GetActive(s.ctx)
	s.Require().NoError(err)
	ids := []string{}
	for _, a := range active {
		ids = append(ids, a.Id)
	}
	s.ElementsMatch([]string{"a2", "a3"}, ids)
	s.True(active[0].CurrentPrice.Equal(dec("100")))
}
