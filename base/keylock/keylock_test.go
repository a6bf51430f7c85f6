package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type keyLockSuite struct {
	suite.Suite
}

func TestKeyLockSuite(t *testing.T) {
	suite.Run(t, new(keyLockSuite))
}

func (s *keyLockSuite) TestSameKeyIsExclusive() {
	k := New()
	counter := 0
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("a")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	s.Equal(100, counter)
	s.Equal(0, k.Size())
}

func (s *keyLockSuite) TestDifferentKeysDoNotBlock() {
	k := New()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("lock on b blocked behind a")
	}
}

func (s *keyLockSuite) TestReleaseIsIdempotentAndReclaims() {
	k := New()
	unlock := k.Lock("a")
	s.Equal(1, k.Size())
	unlock()
	unlock()
	s.Equal(0, k.Size())

	// still usable after reclaim
	unlock = k.Lock("a")
	unlock()
	s.Equal(0, k.Size())
}
