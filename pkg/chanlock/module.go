package chanlock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
)

// Chanlock tells an event loop when to run its next health check and logs
// when the loop does not come back for one in time.
type Chanlock struct {
	log      zerolog.Logger
	lastMark string
	interval time.Duration
	timeout  time.Duration
	stalls   atomic.Int64
	mutex    deadlock.RWMutex
}

const (
	DefaultTimeout  = 15 * time.Second
	DefaultInterval = 1 * time.Second
)

func New(logger zerolog.Logger) *Chanlock {
	return NewWithTimeout(logger, DefaultInterval, DefaultTimeout)
}

func NewWithTimeout(logger zerolog.Logger, interval, timeout time.Duration) *Chanlock {
	return &Chanlock{
		log:      logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Mark records what the loop is about to do, so a stall can be attributed.
func (c *Chanlock) Mark(name string) {
	c.mutex.Lock()
	c.lastMark = name
	c.mutex.Unlock()
}

// Stalls returns how many health checks timed out.
func (c *Chanlock) Stalls() int64 {
	return c.stalls.Load()
}

func (c *Chanlock) watch(ctx context.Context, ok <-chan struct{}) {
	timeout := time.NewTimer(c.timeout)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
	case <-ok:
	case <-timeout.C:
		c.stalls.Add(1)

		c.mutex.RLock()
		mark := c.lastMark
		c.mutex.RUnlock()

		event := c.log.Error()
		if mark != "" {
			event = event.Str("mark", mark)
		}
		event.Msg("event loop no longer healthy")
	}
}

// Poll returns a channel the loop must drain. Each value starts a check
// that passes once the loop has received it.
func (c *Chanlock) Poll(ctx context.Context) <-chan time.Time {
	out := make(chan time.Time)
	ticker := time.NewTicker(c.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				ok := make(chan struct{})
				go c.watch(ctx, ok)

				select {
				case out <- t:
				case <-ctx.Done():
					close(ok)
					return
				}
				close(ok)
				c.Mark("")
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
