// Package countdown drives the local expiry display of a share.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Format renders d as m:ss, rounding down to whole seconds.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Ticker abstracts time.Ticker so tests can drive the countdown.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Countdown ticks once per second from a server-provided expiry down to zero.
// It is a display aid only; the backend enforces expiry.
type Countdown struct {
	mu        sync.Mutex
	remaining time.Duration
	cancel    context.CancelFunc
	done      chan struct{}

	newTicker func() Ticker
}

func New(expiresIn time.Duration) *Countdown {
	return &Countdown{
		remaining: expiresIn.Truncate(time.Second),
		newTicker: func() Ticker { return realTicker{time.NewTicker(time.Second)} },
	}
}

// NewWithTicker is New with an injected ticker source.
func NewWithTicker(expiresIn time.Duration, newTicker func() Ticker) *Countdown {
	c := New(expiresIn)
	c.newTicker = newTicker
	return c
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) String() string {
	return Format(c.Remaining())
}

func (c *Countdown) Expired() bool {
	return c.Remaining() <= 0
}

// Start begins ticking. onTick, if non-nil, receives the remaining time after
// every tick. Start on a running or expired countdown is a no-op.
func (c *Countdown) Start(ctx context.Context, onTick func(time.Duration)) {
	c.mu.Lock()
	if c.done != nil || c.remaining <= 0 {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	ticker := c.newTicker()
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				c.mu.Lock()
				c.remaining -= time.Second
				if c.remaining < 0 {
					c.remaining = 0
				}
				left := c.remaining
				c.mu.Unlock()

				if onTick != nil {
					onTick(left)
				}
				if left == 0 {
					return
				}
			}
		}
	}()
}

// Done is closed once a started countdown stops. It is nil before Start.
func (c *Countdown) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Stop cancels the ticking goroutine and waits for it to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
