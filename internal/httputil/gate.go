// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of concurrent calls to an external API and enforces
// a fixed delay after every call, success or failure, before releasing
// capacity. With width W and delay D the sustained call rate is bounded by
// W/D regardless of how many callers are waiting.
type Gate struct {
	sem   *semaphore.Weighted
	delay time.Duration
}

// NewGate returns a gate admitting up to width concurrent calls, each
// followed by delay before its slot is released.
func NewGate(width int64, delay time.Duration) *Gate {
	return &Gate{
		sem:   semaphore.NewWeighted(width),
		delay: delay,
	}
}

// Do runs fn under the gate. The post-call delay is applied whether fn
// succeeds or fails, and fn's error is always surfaced to the caller. If the
// context is cancelled while waiting for a slot, Do returns ctx.Err()
// without running fn; cancellation during the delay cuts the delay short
// but still returns fn's result.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	err := fn()

	select {
	case <-ctx.Done():
	case <-time.After(g.delay):
	}

	return err
}
