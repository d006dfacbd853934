package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	appointmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookably",
			Name:      "appointments_created_total",
			Help:      "Count of appointments created by initial status.",
		},
		[]string{"status"},
	)

	reserveConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookably",
			Name:      "reserve_conflicts_total",
			Help:      "Count of reservation attempts rejected by the conflict guard.",
		},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookably",
			Name:      "appointment_transitions_total",
			Help:      "Count of lifecycle transitions by target status and trigger.",
		},
		[]string{"to", "trigger"},
	)

	sweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookably",
			Name:      "sweep_runs_total",
			Help:      "Count of sweep executions.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(appointmentsCreated, reserveConflicts, transitions, sweepRuns)
	})
}

func IncAppointmentCreated(status string) {
	appointmentsCreated.WithLabelValues(status).Inc()
}

func IncReserveConflict() {
	reserveConflicts.Inc()
}

func IncTransition(to, trigger string) {
	transitions.WithLabelValues(to, trigger).Inc()
}

func IncSweepRun() {
	sweepRuns.Inc()
}
