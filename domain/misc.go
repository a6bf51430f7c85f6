package domain

import "time"

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

// Clock returns the current time. Usecases take one so tests can move time.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}
