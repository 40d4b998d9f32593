// Package ratelimit provides the in-process fixed-window limiter guarding
// the public portal endpoints. Counters are best-effort and per instance;
// they reset on restart and are never authoritative.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/taxdesk/taxdesk/internal/clock"
	"go.uber.org/fx"
)

type window struct {
	start time.Time
	count int
}

// Limiter counts hits per key within fixed windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	clock   clock.Clock
	limit   int
	period  time.Duration
}

func New(clk clock.Clock, limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		clock:   clk,
		limit:   limit,
		period:  period,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.windows[key] = &window{start: now, count: 1}
		return l.limit >= 1
	}
	w.count++
	return w.count <= l.limit
}

// Sweep drops windows that ended before now, bounding the map's size.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
			evicted++
		}
	}
	return evicted
}

// PortalLimiter guards the token-gated portal routes.
type PortalLimiter struct {
	*Limiter
}

// 60 hits per minute per client key is generous for a human filling a form
// and stingy for a token scanner.
func NewPortalLimiter(clk clock.Clock) PortalLimiter {
	return PortalLimiter{Limiter: New(clk, 60, time.Minute)}
}

var Module = fx.Module("rate.limit",
	fx.Provide(NewPortalLimiter),
	fx.Invoke(startSweeper),
)

func startSweeper(lc fx.Lifecycle, limiter PortalLimiter) {
	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return
					case <-ticker.C:
						limiter.Sweep()
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			<-done
			return nil
		},
	})
}
