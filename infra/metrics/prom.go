package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/evpark/evpark/core/metrics"
)

// PromSink records command outcomes, sweep results and notifications in
// Prometheus metrics.
type PromSink struct {
	commands      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sweepEvents   *prometheus.CounterVec
	sweepDuration prometheus.Histogram
}

// NewPromSink registers the collectors on the provided registerer. If reg is
// nil, the default registerer is used. Already-registered collectors are
// reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evpark_commands_total",
		Help: "Total number of boundary commands by outcome",
	}, []string{"command", "outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evpark_notifications_total",
		Help: "Total number of notifications sent",
	}, []string{"kind"})
	sweepEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evpark_sweep_events_total",
		Help: "Total number of sweep-driven events",
	}, []string{"kind"})
	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evpark_sweep_duration_seconds",
		Help:    "Duration of a full sweep pass including retries",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(commands); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			commands = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(notifications); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			notifications = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(sweepEvents); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sweepEvents = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(sweepDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sweepDuration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		commands:      commands,
		notifications: notifications,
		sweepEvents:   sweepEvents,
		sweepDuration: sweepDuration,
	}, nil
}

// RecordCommand increments the command counter with an ok/error outcome.
func (s *PromSink) RecordCommand(name string, cmdErr error) error {
	outcome := "ok"
	if cmdErr != nil {
		outcome = "error"
	}
	s.commands.WithLabelValues(name, outcome).Inc()
	return nil
}

// RecordSweep records the per-kind sweep event counters and the pass duration.
func (s *PromSink) RecordSweep(stats coremetrics.SweepStats) error {
	for kind, n := range map[string]int{
		"grace_notice":         stats.GraceNotices,
		"overdue_notice":       stats.OverdueNotices,
		"session_reminder":     stats.SessionReminders,
		"reservation_reminder": stats.ReservationReminders,
		"no_show":              stats.NoShows,
		"strike":               stats.Strikes,
		"suspension":           stats.Suspensions,
	} {
		if n > 0 {
			s.sweepEvents.WithLabelValues(kind).Add(float64(n))
		}
	}
	s.sweepDuration.Observe(stats.Duration.Seconds())
	return nil
}

// RecordNotification increments the notification counter.
func (s *PromSink) RecordNotification(kind string) error {
	s.notifications.WithLabelValues(kind).Inc()
	return nil
}
