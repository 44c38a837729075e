package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Janitor periodically sweeps idle sessions out of a Store.
type Janitor struct {
	store    *Store
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	ticker   *time.Ticker
}

func NewJanitor(store *Store, interval time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.ticker = time.NewTicker(j.interval)

	go j.run(ctx)

	log.Info().
		Dur("interval", j.interval).
		Dur("ttl", j.store.ttl).
		Msg("started session janitor")
}

// Stop halts the janitor and waits for the sweep loop to exit.
func (j *Janitor) Stop() {
	j.ticker.Stop()
	close(j.done)
	<-j.stopped
	log.Info().Msg("session janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.stopped)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("context cancelled, session janitor shutting down")
			return
		case <-j.done:
			return
		case <-j.ticker.C:
			if n := j.store.Sweep(); n > 0 {
				log.Debug().
					Int("evicted", n).
					Int("remaining", j.store.Len()).
					Msg("evicted idle sessions")
			}
		}
	}
}
