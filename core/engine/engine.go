// Package engine applies user- and admin-triggered commands to the tables,
// enforcing the eligibility rules, and projects the current table state
// into the board consumed by the presentation layer.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/evpark/evpark/core/clock"
	"github.com/evpark/evpark/core/logger"
	"github.com/evpark/evpark/core/metrics"
	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/core/policy"
	"github.com/evpark/evpark/core/store"
)

// Engine is the state transition engine. All mutating operations run under
// the injected locker; read-only projections are lock-free because rows are
// only ever replaced atomically inside a locked mutation.
type Engine struct {
	st       store.Store
	clk      clock.Clock
	mu       sync.Locker
	notifier notify.Notifier
	sink     metrics.Sink
	log      logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clk = c } }

// WithLocker injects the host's mutual-exclusion lock.
func WithLocker(l sync.Locker) Option { return func(e *Engine) { e.mu = l } }

// WithNotifier sets the outbound notification transport.
func WithNotifier(n notify.Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.Sink) Option { return func(e *Engine) { e.sink = s } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = l } }

// New creates an Engine over the given store.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		st:       st,
		clk:      clock.System{},
		mu:       &sync.Mutex{},
		notifier: notify.Nop{},
		sink:     metrics.NopSink{},
		log:      logger.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// resolve loads the policy config and a fresh snapshot of every table.
func (e *Engine) resolve() (policy.Config, policy.Snapshot, error) {
	values, err := e.st.ConfigValues()
	if err != nil {
		return policy.Config{}, policy.Snapshot{}, err
	}
	cfg, err := policy.Resolve(values)
	if err != nil {
		return policy.Config{}, policy.Snapshot{}, err
	}
	var snap policy.Snapshot
	if snap.Chargers, err = e.st.Chargers(); err != nil {
		return cfg, snap, err
	}
	if snap.Sessions, err = e.st.Sessions(); err != nil {
		return cfg, snap, err
	}
	if snap.Reservations, err = e.st.Reservations(); err != nil {
		return cfg, snap, err
	}
	if snap.Suspensions, err = e.st.Suspensions(); err != nil {
		return cfg, snap, err
	}
	return cfg, snap, nil
}

func (e *Engine) isAdmin(cfg policy.Config, actor model.Actor) bool {
	return actor.Admin || cfg.IsAdminEmail(actor.Email)
}

func chargerByID(snap policy.Snapshot, id string) (model.Charger, error) {
	for _, c := range snap.Chargers {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Charger{}, policy.NotFound(fmt.Sprintf("Charger not found: %s", id))
}

func reservationByID(snap policy.Snapshot, id string) (model.Reservation, error) {
	for _, r := range snap.Reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, policy.NotFound(fmt.Sprintf("Reservation not found: %s", id))
}

func sessionByID(snap policy.Snapshot, id string) (model.Session, error) {
	for _, s := range snap.Sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Session{}, policy.NotFound(fmt.Sprintf("Session not found: %s", id))
}

// record reports the command outcome to the metrics sink.
func (e *Engine) record(name string, err error) {
	if rerr := e.sink.RecordCommand(name, err); rerr != nil {
		e.log.Warnf("record %s metric: %v", name, rerr)
	}
}

func (e *Engine) mail(to, subject, body string) {
	if err := e.notifier.SendMail(notify.Message{To: to, Subject: subject, Body: body}); err != nil {
		e.log.Errorf("mail %s: %v", to, err)
		return
	}
	if err := e.sink.RecordNotification(string(notify.KindMail)); err != nil {
		e.log.Warnf("record notification metric: %v", err)
	}
}

// parseStartTime parses an ISO start time supplied at the boundary.
func parseStartTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, policy.Violation(policy.CodeInvalidArgument, fmt.Sprintf("Invalid start time: %s", raw))
	}
	return t.In(time.Local), nil
}
