// Package metrics defines the sink interface operational events flow into.
// Concrete Prometheus and InfluxDB sinks live in infra/metrics.
package metrics

import "time"

// SweepStats summarizes one completed sweep pass.
type SweepStats struct {
	At                   time.Time
	Attempts             int
	Duration             time.Duration
	GraceNotices         int
	OverdueNotices       int
	SessionReminders     int
	ReservationReminders int
	NoShows              int
	Strikes              int
	Suspensions          int
}

// Sink records operational events. Implementations must be safe for
// concurrent use.
type Sink interface {
	RecordCommand(name string, err error) error
	RecordSweep(stats SweepStats) error
	RecordNotification(kind string) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordCommand(string, error) error { return nil }
func (NopSink) RecordSweep(SweepStats) error      { return nil }
func (NopSink) RecordNotification(string) error   { return nil }

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{sinks: sinks} }

func (m *MultiSink) RecordCommand(name string, cmdErr error) error {
	var first error
	for _, s := range m.sinks {
		if err := s.RecordCommand(name, cmdErr); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) RecordSweep(stats SweepStats) error {
	var first error
	for _, s := range m.sinks {
		if err := s.RecordSweep(stats); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) RecordNotification(kind string) error {
	var first error
	for _, s := range m.sinks {
		if err := s.RecordNotification(kind); err != nil && first == nil {
			first = err
		}
	}
	return first
}
