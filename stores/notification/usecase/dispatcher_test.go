package usecase

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/notification/mocks"
)

var mockCtx = ctx.Background()

type dispatcherSuite struct {
	suite.Suite

	sink *mocks.Sink
	im   Dispatcher
}

func TestDispatcher(t *testing.T) {
	suite.Run(t, new(dispatcherSuite))
}

func (s *dispatcherSuite) SetupTest() {
	s.sink = new(mocks.Sink)
	s.im = New(&DispatcherCfg{
		Sink:       s.sink,
		Workers:    2,
		Attempts:   3,
		RetryDelay: time.Millisecond,
		Metrics:    metrics.NewNop(),
	})
}

func (s *dispatcherSuite) TearDownTest() {
	s.sink.AssertExpectations(s.T())
}

func event(id string) auction.BidAcceptedEvent {
	return auction.NewBidAcceptedEvent(&auction.Bid{
		Id:        id,
		AuctionId: "a1",
		BidderId:  "alice",
		Amount:    decimal.NewFromInt(10),
		BidTime:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
}

func (s *dispatcherSuite) TestDeliversEveryEvent() {
	wg := sync.WaitGroup{}
	wg.Add(3)
	s.sink.On("Deliver", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		wg.Done()
	}).Times(3)

	for _, id := range []string{"b1", "b2", "b3"} {
		s.im.Publish(mockCtx, event(id))
	}
	wg.Wait()
	s.im.Release()
}

func (s *dispatcherSuite) TestRetriesUntilDelivered() {
	done := make(chan struct{})
	s.sink.On("Deliver", mock.Anything, event("b1")).Return(errors.New("timeout")).Twice()
	s.sink.On("Deliver", mock.Anything, event("b1")).Return(nil).Run(func(mock.Arguments) {
		close(done)
	}).Once()

	s.im.Publish(mockCtx, event("b1"))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Fail("event was not delivered")
	}
	s.im.Release()
}

func (s *dispatcherSuite) TestGivesUpAfterAttempts() {
	wg := sync.WaitGroup{}
	wg.Add(3)
	s.sink.On("Deliver", mock.Anything, event("b1")).Return(errors.New("down")).Run(func(mock.Arguments) {
		wg.Done()
	}).Times(3)

	// returns right away even though every delivery fails
	s.im.Publish(mockCtx, event("b1"))
	wg.Wait()
	s.im.Release()
}

type dropCounter struct {
	metrics.Service
	dropped int64
}

func (d *dropCounter) BumpSum(key string, val float64, tags ...string) {
	if key == "event.dropped" {
		atomic.AddInt64(&d.dropped, int64(val))
	}
}

func (s *dispatcherSuite) TestFullQueueDropsWithoutBlocking() {
	met := &dropCounter{Service: metrics.NewNop()}
	im := New(&DispatcherCfg{
		Sink:        s.sink,
		Workers:     1,
		Attempts:    1,
		RetryDelay:  time.Millisecond,
		QueueLength: 1,
		Metrics:     met,
	})

	started := make(chan struct{})
	unblock := make(chan struct{})
	s.sink.On("Deliver", mock.Anything, event("b1")).Return(nil).Run(func(mock.Arguments) {
		close(started)
		<-unblock
	}).Once()

	im.Publish(mockCtx, event("b1"))
	<-started

	begin := time.Now()
	for _, id := range []string{"b2", "b3", "b4", "b5"} {
		im.Publish(mockCtx, event(id))
	}
	s.Less(time.Since(begin), 100*time.Millisecond)
	s.Equal(int64(4), atomic.LoadInt64(&met.dropped))

	close(unblock)
	im.Release()
}
