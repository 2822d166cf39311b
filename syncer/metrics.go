package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_sync_attempts_total",
		Help: "Remote submission attempts made by the retry scheduler, by outcome.",
	}, []string{"outcome"})

	pendingEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "registration_sync_pending_entries",
		Help: "Unsynced entries left in the pending queue after the last drain.",
	})
)
