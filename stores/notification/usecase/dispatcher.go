package usecase

import (
	"time"

	"github.com/viney-shih/goroutines"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/backoff"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/notification"
)

const scheduleTimeout = time.Millisecond

type DispatcherCfg struct {
	Sink    notification.Sink
	Workers int
	// Attempts per event, at least 1
	Attempts int
	// RetryDelay is the first backoff step, doubled on every retry
	RetryDelay time.Duration
	// QueueLength caps the events waiting or in delivery. Publish never
	// waits for room, an event arriving at a full queue is dropped.
	QueueLength int
	Metrics     metrics.Service
}

type dispatcher struct {
	sink       notification.Sink
	attempts   int
	retryDelay time.Duration
	pending    chan struct{}
	met        metrics.Service
	workerPool *goroutines.Pool
}

// Dispatcher is an auction.Notifier that delivers on a worker pool
type Dispatcher interface {
	auction.Notifier
	// Release waits for queued events and stops the workers
	Release()
}

func New(cfg *DispatcherCfg) Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.QueueLength <= 0 {
		cfg.QueueLength = 1024
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New("notification")
	}

	return &dispatcher{
		sink:       cfg.Sink,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		pending:    make(chan struct{}, cfg.QueueLength),
		met:        cfg.Metrics,
		workerPool: goroutines.NewPool(cfg.Workers,
			goroutines.WithTaskQueueLength(cfg.QueueLength),
			goroutines.WithPreAllocWorkers(cfg.Workers),
		),
	}
}

// Publish runs on the bid path, so it never blocks on a full queue
func (d *dispatcher) Publish(ctx bCtx.Ctx, ev auction.BidAcceptedEvent) {
	select {
	case d.pending <- struct{}{}:
	default:
		d.met.BumpSum("event.dropped", 1, "reason", "queue_full")
		ctx.WithField("bidId", ev.BidId).Warn("notification queue full, event dropped")
		return
	}

	// pending bounds the pool queue, so a slot is free here
	err := d.workerPool.ScheduleWithTimeout(scheduleTimeout, func() {
		defer func() { <-d.pending }()
		d.deliver(ctx, ev)
	})
	if err != nil {
		<-d.pending
		d.met.BumpSum("event.dropped", 1, "reason", "schedule")
		ctx.WithFields(log.Fields{"err": err, "bidId": ev.BidId}).Error("failed to ScheduleWithTimeout")
	}
}

func (d *dispatcher) deliver(ctx bCtx.Ctx, ev auction.BidAcceptedEvent) {
	defer d.met.BumpTime("deliver.time").End()

	b := backoff.NewExponential(d.retryDelay, 10*d.retryDelay)
	err := b.Retry(ctx, d.attempts, func() error {
		return d.sink.Deliver(ctx, ev)
	})
	if err != nil {
		d.met.BumpSum("deliver.err", 1)
		ctx.WithFields(log.Fields{"err": err, "bidId": ev.BidId, "auctionId": ev.AuctionId}).Error("failed to deliver event")
		return
	}
	d.met.BumpSum("delivered", 1)
}

func (d *dispatcher) Release() {
	d.workerPool.Release()
}
