package backoff

import (
	"context"
	"math"
	"time"
)

// Strategy computes the wait before the next attempt from the number of
// waits already taken.
type Strategy interface {
	Duration(attempt int, start time.Duration) time.Duration
}

type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration
	start        time.Duration
	limit        time.Duration
	count        int
	strategy     Strategy
}

func New(strategy Strategy, start time.Duration, limit time.Duration) *Backoff {
	b := Backoff{strategy: strategy, start: start, limit: limit}
	b.Reset()
	return &b
}

func (b *Backoff) Reset() {
	b.count = 0
	b.LastDuration = 0
	b.NextDuration = b.next()
}

// Wait sleeps for NextDuration and advances the schedule. It returns the
// context error if ctx ends first.
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.NextDuration)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	b.count++
	b.LastDuration = b.NextDuration
	b.NextDuration = b.next()
	return nil
}

// Retry calls fn up to attempts times, waiting between failures. The last
// error from fn is returned when every attempt fails.
func (b *Backoff) Retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if werr := b.Wait(ctx); werr != nil {
			return err
		}
	}
	return err
}

func (b *Backoff) next() time.Duration {
	d := b.strategy.Duration(b.count, b.start)
	if b.limit > 0 && d > b.limit {
		d = b.limit
	}
	return d
}

type exponential struct{}

func (exponential) Duration(attempt int, start time.Duration) time.Duration {
	return time.Duration(int64(math.Pow(2, float64(attempt)))) * start
}

func NewExponential(start time.Duration, limit time.Duration) *Backoff {
	return New(exponential{}, start, limit)
}

type linear struct{}

func (linear) Duration(attempt int, start time.Duration) time.Duration {
	return time.Duration(attempt+1) * start
}

func NewLinear(start time.Duration, limit time.Duration) *Backoff {
	return New(linear{}, start, limit)
}
