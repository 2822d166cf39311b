package syncer

import (
	"context"
	"log/slog"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) bool
}

type Kicker interface {
	Kick()
}

// Probe watches endpoint reachability and kicks the scheduler on the
// offline-to-online transition so a recovered connection drains the
// queue without waiting for the next periodic pass.
type Probe struct {
	pinger   Pinger
	kicker   Kicker
	logger   *slog.Logger
	interval time.Duration

	online bool
}

func NewProbe(pinger Pinger, kicker Kicker, logger *slog.Logger, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Probe{
		pinger:   pinger,
		kicker:   kicker,
		logger:   logger,
		interval: interval,
		// Assume online until a check says otherwise.
		online: true,
	}
}

func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *Probe) check(ctx context.Context) {
	online := p.pinger.Ping(ctx)

	switch {
	case online && !p.online:
		p.logger.Info("Endpoint reachable again, kicking sync")
		p.kicker.Kick()
	case !online && p.online:
		p.logger.Warn("Endpoint unreachable, registrations will queue locally")
	}

	p.online = online
}
