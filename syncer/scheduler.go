// Package syncer reconciles the local pending queue with the remote endpoint
// in the background. It is a drain loop, not a request/response surface: no
// caller waits on a pass.
package syncer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/globalidara/bootcamp-registration/registration"
	"github.com/globalidara/bootcamp-registration/sheets"
)

type Client interface {
	SubmitNew(ctx context.Context, rec registration.Record) sheets.Outcome
	SubmitStatusUpdate(ctx context.Context, rec registration.Record) sheets.Outcome
}

type Config struct {
	// Interval between periodic drains. Defaults to 30s.
	Interval time.Duration
	// StartupGrace delays the first drain after Run starts. Defaults to 2s.
	StartupGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.StartupGrace <= 0 {
		c.StartupGrace = 2 * time.Second
	}
	return c
}

type Scheduler struct {
	store  registration.Store
	client Client
	logger *slog.Logger
	cfg    Config

	kick     chan struct{}
	draining atomic.Bool
	now      func() time.Time
}

func NewScheduler(store registration.Store, client Client, logger *slog.Logger, cfg Config) *Scheduler {
	return &Scheduler{
		store:  store,
		client: client,
		logger: logger,
		cfg:    cfg.withDefaults(),
		kick:   make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Kick requests a drain outside the periodic schedule, e.g. right after a new
// entry is queued or when connectivity returns. Never blocks; kicks coalesce.
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run drains on three triggers: once after the startup grace, on every
// interval tick, and on every Kick. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	grace := time.NewTimer(s.cfg.StartupGrace)
	defer grace.Stop()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-grace.C:
		case <-ticker.C:
		case <-s.kick:
		}

		s.Drain(ctx)
	}
}

// Drain runs one pass over the pending queue. A pass already in progress
// absorbs concurrent triggers; drains never overlap.
func (s *Scheduler) Drain(ctx context.Context) {
	if !s.draining.CompareAndSwap(false, true) {
		return
	}
	defer s.draining.Store(false)

	entries, err := s.store.ListPending(ctx)
	if err != nil {
		s.logger.Error("Failed to list pending registrations", "error", err)
		return
	}

	attempted := 0
	for i := range entries {
		entry := &entries[i]
		if !entry.Retryable() {
			continue
		}
		attempted++

		var outcome sheets.Outcome
		if entry.Record.Status == registration.PAID {
			outcome = s.client.SubmitStatusUpdate(ctx, entry.Record)
		} else {
			outcome = s.client.SubmitNew(ctx, entry.Record)
		}
		syncAttempts.WithLabelValues(outcome.String()).Inc()

		if outcome == sheets.OUTCOME_CONFIRMED {
			entry.Synced = true
			syncedAt := s.now()
			entry.SyncedAt = &syncedAt
		} else {
			entry.SyncAttempts++
			if entry.SyncAttempts >= registration.MaxSyncAttempts {
				s.logger.Warn("Entry reached the retry cap, leaving it for manual resolution",
					"email", entry.Record.Email, "reference", entry.Record.Reference)
			}
		}
	}

	if attempted == 0 && len(entries) == 0 {
		return
	}

	if err := s.store.ReplacePending(ctx, entries); err != nil {
		s.logger.Error("Failed to persist pending queue after drain", "error", err)
		return
	}

	unsynced := 0
	for _, entry := range entries {
		if !entry.Synced {
			unsynced++
		}
	}
	pendingEntries.Set(float64(unsynced))

	snap := registration.Snapshot{PendingCount: unsynced, LastUpdate: s.now()}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("Failed to save sync snapshot", "error", err)
	}

	if attempted > 0 {
		s.logger.Info("Sync pass finished", "attempted", attempted, "stillPending", unsynced)
	}
}
