package workflow

import (
	"context"
	"time"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultIdleTimeout   = 2 * time.Hour
)

// Sweeper periodically drops idle sessions so abandoned tabs do not keep
// their attachments in memory.
type Sweeper struct {
	Registry    *Registry
	Interval    time.Duration
	IdleTimeout time.Duration
	Logf        func(string, ...any)
}

func NewSweeper(registry *Registry, interval, idle time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &Sweeper{Registry: registry, Interval: interval, IdleTimeout: idle}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce sweeps once and returns how many sessions were dropped.
func (s *Sweeper) RunOnce() int {
	if s == nil || s.Registry == nil {
		return 0
	}
	removed := s.Registry.Sweep(s.IdleTimeout)
	if len(removed) > 0 && s.Logf != nil {
		s.Logf("dropped %d idle sessions", len(removed))
	}
	return len(removed)
}
