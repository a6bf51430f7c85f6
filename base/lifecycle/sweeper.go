// Package lifecycle drives auctions through their time based transitions.
package lifecycle

import (
	"sync/atomic"
	"time"

	"go.uber.org/ratelimit"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/goroutine"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/statistic"
)

const DefaultInterval = 5 * time.Minute

// Report sums up one sweep
type Report struct {
	Activated int
	Ended     int
	Pruned    int
	Failed    int
}

type Sweeper struct {
	lifecycle auction.Lifecycle
	registry  statistic.Registry
	interval  time.Duration
	limiter   ratelimit.Limiter
	now       domain.Clock
	met       metrics.Service

	running   atomic.Bool
	stoppedCh chan interface{}
}

func NewSweeper(lc auction.Lifecycle, registry statistic.Registry) *Sweeper {
	return &Sweeper{
		lifecycle: lc,
		registry:  registry,
		interval:  DefaultInterval,
		limiter:   ratelimit.NewUnlimited(),
		now:       domain.SystemClock,
		met:       metrics.New("sweeper"),
		stoppedCh: make(chan interface{}),
	}
}

func (s *Sweeper) SetInterval(interval time.Duration) *Sweeper {
	if interval > 0 {
		s.interval = interval
	}
	return s
}

// SetRate caps transitions per second, 0 means unlimited
func (s *Sweeper) SetRate(perSecond int) *Sweeper {
	if perSecond > 0 {
		s.limiter = ratelimit.New(perSecond)
	} else {
		s.limiter = ratelimit.NewUnlimited()
	}
	return s
}

func (s *Sweeper) SetClock(clock domain.Clock) *Sweeper {
	s.now = clock
	return s
}

func (s *Sweeper) SetMetrics(met metrics.Service) *Sweeper {
	s.met = met
	return s
}

// Start sweeps once right away and then on every interval until ctx is done
func (s *Sweeper) Start(ctx ctx.Ctx) {
	go s.loop(ctx)
}

func (s *Sweeper) loop(ctx ctx.Ctx) {
	nextTick := time.Duration(0)
	for {
		select {
		case <-ctx.Done():
			close(s.stoppedCh)
			return
		case <-time.After(nextTick):
			// a panicking sweep is logged and the next tick runs as usual
			if ev := <-goroutine.RecoverableGo(func() { s.RunOnce(ctx) },
				goroutine.WithName("sweeper"),
				goroutine.WithLogger(ctx.Logger),
			); ev != nil {
				s.met.BumpSum("sweep.panic", 1)
			}
			nextTick = s.interval
		}
	}
}

// Wait blocks until the loop started by Start has returned
func (s *Sweeper) Wait() {
	<-s.stoppedCh
}

// RunOnce performs one sweep. It returns false without doing anything when
// another sweep is in progress. Failures are logged and left for the next
// sweep.
func (s *Sweeper) RunOnce(ctx ctx.Ctx) (Report, bool) {
	if !s.running.CompareAndSwap(false, true) {
		ctx.Warn("sweep already running")
		return Report{}, false
	}
	defer s.running.Store(false)
	defer s.met.BumpTime("sweep.time").End()

	report := Report{}
	now := s.now()

	toActivate, toClose, err := s.lifecycle.ListDue(ctx, now)
	if err != nil {
		ctx.WithField("err", err).Error("lifecycle.ListDue failed")
		s.met.BumpSum("sweep.err", 1, "step", "list")
		report.Failed++
		return report, true
	}

	for _, id := range toActivate {
		s.limiter.Take()
		activated, ended, err := s.lifecycle.ActivateIfDue(ctx, id, now)
		if activated {
			report.Activated++
		}
		if ended {
			report.Ended++
		}
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "auctionId": id}).Error("lifecycle.ActivateIfDue failed")
			s.met.BumpSum("sweep.err", 1, "step", "activate")
			report.Failed++
		}
	}

	for _, id := range toClose {
		s.limiter.Take()
		if ok, err := s.lifecycle.CloseIfDue(ctx, id, now); err != nil {
			ctx.WithFields(log.Fields{"err": err, "auctionId": id}).Error("lifecycle.CloseIfDue failed")
			s.met.BumpSum("sweep.err", 1, "step", "close")
			report.Failed++
		} else if ok {
			report.Ended++
		}
	}

	for _, id := range s.registry.TrackedAuctions() {
		if ok, err := s.lifecycle.PruneIfInactive(ctx, id); err != nil {
			ctx.WithFields(log.Fields{"err": err, "auctionId": id}).Error("lifecycle.PruneIfInactive failed")
			s.met.BumpSum("sweep.err", 1, "step", "prune")
			report.Failed++
		} else if ok {
			report.Pruned++
		}
	}

	s.registry.MarkSweep(now)
	s.met.BumpSum("sweep.activated", float64(report.Activated))
	s.met.BumpSum("sweep.ended", float64(report.Ended))
	ctx.WithFields(log.Fields{
		"activated": report.Activated,
		"ended":     report.Ended,
		"pruned":    report.Pruned,
		"failed":    report.Failed,
	}).Info("sweep done")
	return report, true
}
