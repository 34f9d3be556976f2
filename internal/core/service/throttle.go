package service

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultThrottleInterval is the minimum spacing between accepted chat requests.
const DefaultThrottleInterval = 2 * time.Second

// IntervalGate is the in-process global throttle. It stores the last accepted
// time and advances it with compare-and-swap, so two racing callers can never
// both pass inside one interval.
type IntervalGate struct {
	interval time.Duration
	now      func() time.Time
	last     atomic.Int64 // unix nanos of the last accepted request, 0 = never
}

func NewIntervalGate(interval time.Duration, now func() time.Time) *IntervalGate {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	if now == nil {
		now = time.Now
	}
	return &IntervalGate{interval: interval, now: now}
}

// Allow never fails; the error return satisfies ports.RateGate.
func (g *IntervalGate) Allow(_ context.Context) (bool, error) {
	for {
		last := g.last.Load()
		now := g.now().UnixNano()
		if last != 0 && now-last < int64(g.interval) {
			return false, nil
		}
		if g.last.CompareAndSwap(last, now) {
			return true, nil
		}
	}
}
