package countdown

import (
	"sync"
	"time"
)

// Flag is a boolean that clears itself after a fixed delay, used for
// "Copied!" style feedback.
type Flag struct {
	mu    sync.Mutex
	until time.Time
	after time.Duration
	now   func() time.Time
}

func NewFlag(after time.Duration) *Flag {
	return &Flag{after: after, now: time.Now}
}

// Set raises the flag; setting it again restarts the delay.
func (f *Flag) Set() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.until = f.now().Add(f.after)
}

func (f *Flag) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now().Before(f.until)
}

func (f *Flag) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.until = time.Time{}
}
