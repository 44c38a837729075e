package countdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualTicker() *manualTicker {
	return &manualTicker{c: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

func (m *manualTicker) tick() { m.c <- time.Now() }

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{600 * time.Second, "10:00"},
		{599 * time.Second, "9:59"},
		{65 * time.Second, "1:05"},
		{1500 * time.Millisecond, "0:01"},
		{0, "0:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}

func TestCountdownTicksDown(t *testing.T) {
	ticker := newManualTicker()
	c := NewWithTicker(3*time.Second, func() Ticker { return ticker })
	assert.Equal(t, "0:03", c.String())

	seen := make(chan time.Duration, 3)
	c.Start(context.Background(), func(d time.Duration) { seen <- d })

	ticker.tick()
	assert.Equal(t, 2*time.Second, <-seen)
	ticker.tick()
	assert.Equal(t, time.Second, <-seen)
	ticker.tick()
	assert.Equal(t, time.Duration(0), <-seen)

	<-c.Done()
	<-ticker.stopped
	assert.True(t, c.Expired())
}

func TestCountdownStop(t *testing.T) {
	ticker := newManualTicker()
	c := NewWithTicker(10*time.Minute, func() Ticker { return ticker })

	c.Start(context.Background(), nil)
	ticker.tick()
	c.Stop()

	<-ticker.stopped
	assert.Equal(t, "9:59", c.String())

	// Stop twice is harmless
	c.Stop()
}

func TestCountdownContextCancel(t *testing.T) {
	ticker := newManualTicker()
	c := NewWithTicker(time.Minute, func() Ticker { return ticker })

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, nil)
	cancel()

	<-c.Done()
	assert.Equal(t, time.Minute, c.Remaining())
}

func TestCountdownExpiredDoesNotStart(t *testing.T) {
	c := New(0)
	c.Start(context.Background(), nil)
	assert.Nil(t, c.Done())
	c.Stop()
}

func TestCountdownRealTicker(t *testing.T) {
	if testing.Short() {
		t.Skip("uses wall clock")
	}
	c := New(time.Second)
	c.Start(context.Background(), nil)

	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("countdown did not finish")
	}
	require.True(t, c.Expired())
}

func TestFlag(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f := NewFlag(5 * time.Second)
	f.now = func() time.Time { return now }

	assert.False(t, f.Active())

	f.Set()
	assert.True(t, f.Active())

	now = now.Add(4 * time.Second)
	assert.True(t, f.Active())

	now = now.Add(time.Second)
	assert.False(t, f.Active())

	f.Set()
	f.Clear()
	assert.False(t, f.Active())
}
