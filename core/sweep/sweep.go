// Package sweep implements the periodic maintenance pass: staged session
// reminders, overdue handling, no-shows, strike accounting and suspensions.
// A single pass is idempotent; the host trigger decides the cadence.
package sweep

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evpark/evpark/core/clock"
	"github.com/evpark/evpark/core/logger"
	"github.com/evpark/evpark/core/metrics"
	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/core/policy"
	"github.com/evpark/evpark/core/store"
)

const (
	// overdueResendInterval bounds how often the overdue notice repeats.
	overdueResendInterval = 30 * time.Minute
	// lateStrikeAfter is how long past the grace boundary a session must stay
	// overdue before it earns a late-end strike.
	lateStrikeAfter = 30 * time.Minute

	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
)

// Sweeper runs the maintenance pass over the store. The whole pass is wrapped
// in a bounded retry loop for transient infrastructure failures; entity-level
// errors surface immediately.
type Sweeper struct {
	st       store.Store
	clk      clock.Clock
	mu       sync.Locker
	notifier notify.Notifier
	sink     metrics.Sink
	log      logger.Logger

	attempts int
	delay    time.Duration
	sleep    func(time.Duration)
	patterns []string
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option { return func(s *Sweeper) { s.clk = c } }

// WithLocker injects the host's mutual-exclusion lock. It must be the same
// lock the command engine uses.
func WithLocker(l sync.Locker) Option { return func(s *Sweeper) { s.mu = l } }

// WithNotifier sets the outbound notification transport.
func WithNotifier(n notify.Notifier) Option { return func(s *Sweeper) { s.notifier = n } }

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.Sink) Option { return func(s *Sweeper) { s.sink = m } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(s *Sweeper) { s.log = l } }

// WithRetry overrides the retry budget.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Sweeper) {
		if attempts > 0 {
			s.attempts = attempts
		}
		s.delay = delay
	}
}

// WithRetryablePatterns replaces the transient-error allow-list.
func WithRetryablePatterns(patterns []string) Option {
	return func(s *Sweeper) {
		if len(patterns) > 0 {
			s.patterns = patterns
		}
	}
}

// WithSleep replaces the inter-attempt sleep. Tests inject a no-op.
func WithSleep(fn func(time.Duration)) Option { return func(s *Sweeper) { s.sleep = fn } }

// New creates a Sweeper over the given store.
func New(st store.Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		st:       st,
		clk:      clock.System{},
		mu:       &sync.Mutex{},
		notifier: notify.Nop{},
		sink:     metrics.NopSink{},
		log:      logger.Nop{},
		attempts: defaultAttempts,
		delay:    defaultDelay,
		sleep:    time.Sleep,
		patterns: DefaultRetryablePatterns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one maintenance pass, retrying the whole pass on transient
// infrastructure errors up to the attempt ceiling.
func (s *Sweeper) Run() (metrics.SweepStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	began := time.Now()
	var stats metrics.SweepStats
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		stats, err = s.pass(now)
		stats.At = now
		stats.Attempts = attempt
		if err == nil {
			break
		}
		if !IsTransient(err, s.patterns) {
			stats.Duration = time.Since(began)
			return stats, err
		}
		s.log.Warnf("sweep attempt %d/%d failed: %v", attempt, s.attempts, err)
		if attempt < s.attempts {
			s.sleep(s.delay)
		}
	}
	stats.Duration = time.Since(began)
	if err != nil {
		return stats, fmt.Errorf("sweep failed after %d attempts: %w", s.attempts, err)
	}
	if rerr := s.sink.RecordSweep(stats); rerr != nil {
		s.log.Warnf("record sweep metrics: %v", rerr)
	}
	s.log.Infof("sweep done: %d reminders, %d overdue notices, %d no-shows, %d strikes, %d suspensions",
		stats.SessionReminders+stats.ReservationReminders, stats.OverdueNotices, stats.NoShows, stats.Strikes, stats.Suspensions)
	return stats, nil
}

func (s *Sweeper) pass(now time.Time) (metrics.SweepStats, error) {
	var stats metrics.SweepStats

	values, err := s.st.ConfigValues()
	if err != nil {
		return stats, err
	}
	cfg, err := policy.Resolve(values)
	if err != nil {
		return stats, err
	}
	chargers, err := s.st.Chargers()
	if err != nil {
		return stats, err
	}
	names := make(map[string]string, len(chargers))
	for _, c := range chargers {
		names[c.ID] = c.Name
	}

	if err := s.sweepSessions(cfg, names, now, &stats); err != nil {
		return stats, err
	}
	if err := s.sweepReservations(cfg, names, now, &stats); err != nil {
		return stats, err
	}
	if err := s.sweepSuspensions(cfg, now, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// sweepSessions handles staged end-of-session reminders and the overdue
// escalation ladder: grace notice, repeated overdue notices, late-end strike.
func (s *Sweeper) sweepSessions(cfg policy.Config, names map[string]string, now time.Time, stats *metrics.SweepStats) error {
	sessions, err := s.st.Sessions()
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		if !sess.IsActive() {
			continue
		}
		charger := names[sess.ChargerID]
		remaining := sess.EndTime.Sub(now)
		changed := false

		switch {
		case remaining > 0:
			for _, stage := range []struct {
				at   time.Duration
				sent *bool
			}{
				{10 * time.Minute, &sess.Reminder10Sent},
				{5 * time.Minute, &sess.Reminder5Sent},
			} {
				if remaining <= stage.at && !*stage.sent {
					s.mail(sess.UserID, fmt.Sprintf("%d minutes left on %s", int(stage.at.Minutes()), charger),
						fmt.Sprintf("Your charging session on %s ends at %s.", charger, sess.EndTime.Format("3:04 PM")))
					*stage.sent = true
					stats.SessionReminders++
					changed = true
				}
			}
		case !sess.OverdueAt(now, cfg.MoveGraceMinutes):
			// Inside the move grace: one reminder, one grace notice, no strike.
			if !sess.Reminder0Sent {
				s.mail(sess.UserID, fmt.Sprintf("Time is up on %s", charger),
					fmt.Sprintf("Your charging session on %s has ended.", charger))
				sess.Reminder0Sent = true
				stats.SessionReminders++
				changed = true
			}
			if sess.GraceNotifiedAt.IsZero() {
				s.mail(sess.UserID, fmt.Sprintf("Please move your vehicle from %s", charger),
					fmt.Sprintf("You have %d minutes to free up %s.", cfg.MoveGraceMinutes, charger))
				sess.GraceNotifiedAt = now
				stats.GraceNotices++
				changed = true
			}
		default:
			if sess.OverdueLastSentAt.IsZero() || now.Sub(sess.OverdueLastSentAt) >= overdueResendInterval {
				s.mail(sess.UserID, fmt.Sprintf("Overdue session on %s", charger),
					fmt.Sprintf("Your session on %s ended at %s. Please move your vehicle now.", charger, sess.EndTime.Format("3:04 PM")))
				sess.OverdueLastSentAt = now
				stats.OverdueNotices++
				changed = true
			}
			graceEnd := sess.EndTime.Add(cfg.MoveGrace())
			if sess.LateStrikeAt.IsZero() && !now.Before(graceEnd.Add(lateStrikeAfter)) {
				if err := s.issueStrike(model.Strike{
					UserID:     sess.UserID,
					UserName:   sess.UserName,
					Type:       model.StrikeLateEnd,
					SourceType: "session",
					SourceID:   sess.ID,
					Reason:     fmt.Sprintf("Session on %s stayed overdue past the grace period.", charger),
					OccurredAt: now,
				}, stats); err != nil {
					return err
				}
				sess.LateStrikeAt = now
				changed = true
			}
		}

		if changed {
			if err := s.st.UpdateSession(sess); err != nil {
				return err
			}
		}
	}
	return nil
}

// sweepReservations sends the pre- and post-start reminders and converts
// unclaimed reservations to no-shows once their slot has fully passed.
func (s *Sweeper) sweepReservations(cfg policy.Config, names map[string]string, now time.Time, stats *metrics.SweepStats) error {
	reservations, err := s.st.Reservations()
	if err != nil {
		return err
	}
	for _, res := range reservations {
		if res.Status != model.ReservationActive {
			continue
		}
		charger := names[res.ChargerID]
		changed := false

		if !res.EndTime.After(now) {
			res.Status = model.ReservationNoShow
			res.NoShowAt = now
			res.UpdatedAt = now
			stats.NoShows++
			if res.NoShowStrikeAt.IsZero() {
				if err := s.issueStrike(model.Strike{
					UserID:     res.UserID,
					UserName:   res.UserName,
					Type:       model.StrikeNoShow,
					SourceType: "reservation",
					SourceID:   res.ID,
					Reason:     fmt.Sprintf("Missed reservation on %s at %s.", charger, res.StartTime.Format("3:04 PM")),
					OccurredAt: now,
				}, stats); err != nil {
					return err
				}
				res.NoShowStrikeAt = now
			}
			s.mail(res.UserID, fmt.Sprintf("Missed reservation on %s", charger),
				fmt.Sprintf("You did not check in for your %s reservation on %s. It was released and counts as a no-show.",
					res.StartTime.Format("3:04 PM"), charger))
			if err := s.st.UpdateReservation(res); err != nil {
				return err
			}
			continue
		}

		if !res.ReminderBeforeSent && !now.Before(res.StartTime.Add(-5*time.Minute)) && now.Before(res.StartTime) {
			s.mail(res.UserID, fmt.Sprintf("Your slot on %s starts soon", charger),
				fmt.Sprintf("Your reservation on %s starts at %s. Remember to check in.", charger, res.StartTime.Format("3:04 PM")))
			res.ReminderBeforeSent = true
			stats.ReservationReminders++
			changed = true
		}
		if !res.ReminderAfterSent && !now.Before(res.StartTime.Add(5*time.Minute)) {
			s.mail(res.UserID, fmt.Sprintf("Check in on %s", charger),
				fmt.Sprintf("Your %s slot on %s started and you have not checked in yet.", res.StartTime.Format("3:04 PM"), charger))
			res.ReminderAfterSent = true
			stats.ReservationReminders++
			changed = true
		}

		if changed {
			res.UpdatedAt = now
			if err := s.st.UpdateReservation(res); err != nil {
				return err
			}
		}
	}
	return nil
}

// sweepSuspensions retires expired suspensions and converts this month's
// accumulated strikes into new ones. A user is never double-suspended, and at
// most one suspension is created per user per strike month.
func (s *Sweeper) sweepSuspensions(cfg policy.Config, now time.Time, stats *metrics.SweepStats) error {
	suspensions, err := s.st.Suspensions()
	if err != nil {
		return err
	}
	covered := map[string]bool{}
	monthDone := map[string]bool{}
	month := model.MonthKeyOf(now)
	for _, susp := range suspensions {
		if susp.Active && !susp.Covers(now) {
			susp.Active = false
			if err := s.st.UpdateSuspension(susp); err != nil {
				return err
			}
		}
		if susp.Active && susp.Covers(now) {
			covered[susp.UserID] = true
		}
		if model.MonthKeyOf(susp.CreatedAt) == month {
			monthDone[susp.UserID] = true
		}
	}

	strikes, err := s.st.Strikes()
	if err != nil {
		return err
	}
	counts := map[string]int{}
	names := map[string]string{}
	for _, strike := range strikes {
		if strike.MonthKey != month {
			continue
		}
		counts[strike.UserID]++
		names[strike.UserID] = strike.UserName
	}

	for userID, n := range counts {
		if n < cfg.StrikeThreshold || covered[userID] || monthDone[userID] {
			continue
		}
		susp := model.Suspension{
			ID:        uuid.NewString(),
			UserID:    userID,
			UserName:  names[userID],
			StartAt:   now,
			EndAt:     addBusinessDays(now, cfg.SuspensionBusinessDays),
			Reason:    fmt.Sprintf("%d strikes in %s", n, month),
			Active:    true,
			CreatedAt: now,
		}
		if err := s.st.AppendSuspension(susp); err != nil {
			return err
		}
		stats.Suspensions++
		s.mail(userID, "Booking access suspended",
			fmt.Sprintf("You reached %d strikes this month. Booking is suspended until %s.", n, susp.EndAt.Format("Jan 2")))
		s.log.Warnf("user %s suspended until %s (%d strikes)", userID, susp.EndAt.Format(time.RFC3339), n)
	}
	return nil
}

func (s *Sweeper) issueStrike(strike model.Strike, stats *metrics.SweepStats) error {
	strike.ID = uuid.NewString()
	strike.MonthKey = model.MonthKeyOf(strike.OccurredAt)
	if err := s.st.AppendStrike(strike); err != nil {
		return err
	}
	stats.Strikes++
	s.log.Infof("strike (%s) issued to %s: %s", strike.Type, strike.UserID, strike.Reason)
	return nil
}

func (s *Sweeper) mail(to, subject, body string) {
	if err := s.notifier.SendMail(notify.Message{To: to, Subject: subject, Body: body}); err != nil {
		s.log.Errorf("mail %s: %v", to, err)
		return
	}
	if err := s.sink.RecordNotification(string(notify.KindMail)); err != nil {
		s.log.Warnf("record notification metric: %v", err)
	}
}

// addBusinessDays returns t advanced by n week days, skipping Saturdays and
// Sundays.
func addBusinessDays(t time.Time, n int) time.Time {
	out := t
	for n > 0 {
		out = out.AddDate(0, 0, 1)
		if wd := out.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return out
}
