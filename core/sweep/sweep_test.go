package sweep

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/core/store"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func at(hour, minute int) time.Time {
	return time.Date(2026, time.February, 9, hour, minute, 0, 0, time.Local)
}

type mailbox struct {
	mails []notify.Message
}

func (m *mailbox) SendMail(msg notify.Message) error {
	m.mails = append(m.mails, msg)
	return nil
}

func (m *mailbox) PostChannel(string) error { return nil }

func newSweeper(t *testing.T, clk *stepClock) (*Sweeper, *store.MemoryStore, *mailbox) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(st, "admin@example.com"))
	box := &mailbox{}
	s := New(st,
		WithClock(clk),
		WithNotifier(box),
		WithSleep(func(time.Duration) {}),
	)
	return s, st, box
}

func TestSessionReminderLadder(t *testing.T) {
	clk := &stepClock{t: at(10, 52)}
	s, st, box := newSweeper(t, clk)
	require.NoError(t, st.AppendSession(model.Session{
		ID:        "sess-1",
		ChargerID: "1",
		UserID:    "alice@example.com",
		UserName:  "Alice",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Status:    model.SessionActive,
	}))

	// Eight minutes left: only the 10-minute reminder fires.
	stats, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionReminders)
	require.Len(t, box.mails, 1)
	assert.Equal(t, "10 minutes left on Charger 1", box.mails[0].Subject)

	// Repeating the pass sends nothing new.
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.SessionReminders)
	assert.Len(t, box.mails, 1)

	clk.t = at(10, 56)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionReminders)
	assert.Equal(t, "5 minutes left on Charger 1", box.mails[1].Subject)

	// Just past the end, inside the move grace: time-up plus grace notice.
	clk.t = at(11, 2)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionReminders)
	assert.Equal(t, 1, stats.GraceNotices)
	assert.Zero(t, stats.Strikes)

	// Grace exhausted: first overdue notice.
	clk.t = at(11, 10)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OverdueNotices)
	assert.Zero(t, stats.Strikes)

	// Ten minutes later the notice is still within its resend interval.
	clk.t = at(11, 20)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.OverdueNotices)

	// Half an hour after the last notice it repeats, and the session has now
	// been overdue long enough to earn a late-end strike.
	clk.t = at(11, 45)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OverdueNotices)
	assert.Equal(t, 1, stats.Strikes)

	clk.t = at(11, 46)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.Strikes)

	strikes, err := st.Strikes()
	require.NoError(t, err)
	require.Len(t, strikes, 1)
	assert.Equal(t, model.StrikeLateEnd, strikes[0].Type)
	assert.Equal(t, "sess-1", strikes[0].SourceID)
	assert.Equal(t, "2026-02", strikes[0].MonthKey)
}

func TestReservationRemindersAndNoShow(t *testing.T) {
	clk := &stepClock{t: at(9, 56)}
	s, st, box := newSweeper(t, clk)
	require.NoError(t, st.AppendReservation(model.Reservation{
		ID:        "res-1",
		ChargerID: "1",
		UserID:    "alice@example.com",
		UserName:  "Alice",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Status:    model.ReservationActive,
	}))

	stats, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReservationReminders)
	assert.Equal(t, "Your slot on Charger 1 starts soon", box.mails[0].Subject)

	// Five minutes into the slot without a check-in.
	clk.t = at(10, 6)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReservationReminders)
	assert.Equal(t, "Check in on Charger 1", box.mails[1].Subject)

	// The slot has fully passed: release, strike, notify.
	clk.t = at(11, 0)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NoShows)
	assert.Equal(t, 1, stats.Strikes)
	assert.Equal(t, "Missed reservation on Charger 1", box.mails[2].Subject)

	reservations, err := st.Reservations()
	require.NoError(t, err)
	assert.Equal(t, model.ReservationNoShow, reservations[0].Status)
	assert.Equal(t, at(11, 0), reservations[0].NoShowAt)

	// The converted reservation is never touched again.
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.NoShows)
	assert.Zero(t, stats.Strikes)
	strikes, err := st.Strikes()
	require.NoError(t, err)
	assert.Len(t, strikes, 1)
}

func TestSuspensionAfterThreshold(t *testing.T) {
	clk := &stepClock{t: at(11, 0)}
	s, st, box := newSweeper(t, clk)
	for i := 0; i < 2; i++ {
		require.NoError(t, st.AppendStrike(model.Strike{
			ID:         fmt.Sprintf("strike-%d", i),
			UserID:     "alice@example.com",
			UserName:   "Alice",
			Type:       model.StrikeNoShow,
			OccurredAt: at(9, 0),
			MonthKey:   model.MonthKeyOf(at(9, 0)),
		}))
	}

	stats, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Suspensions)
	require.Len(t, box.mails, 1)
	assert.Equal(t, "Booking access suspended", box.mails[0].Subject)

	suspensions, err := st.Suspensions()
	require.NoError(t, err)
	require.Len(t, suspensions, 1)
	assert.True(t, suspensions[0].Active)
	// Two business days from Monday Feb 9 is Wednesday Feb 11.
	assert.Equal(t, time.Date(2026, time.February, 11, 11, 0, 0, 0, time.Local), suspensions[0].EndAt)

	// While the suspension covers the user nothing new is created.
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.Suspensions)

	// After it expires the same month's strikes do not suspend twice; the
	// expired row is merely retired.
	clk.t = clk.t.AddDate(0, 0, 3)
	stats, err = s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.Suspensions)
	suspensions, err = st.Suspensions()
	require.NoError(t, err)
	require.Len(t, suspensions, 1)
	assert.False(t, suspensions[0].Active)
}

func TestSuspensionBelowThreshold(t *testing.T) {
	clk := &stepClock{t: at(11, 0)}
	s, st, _ := newSweeper(t, clk)
	require.NoError(t, st.AppendStrike(model.Strike{
		ID:       "strike-0",
		UserID:   "alice@example.com",
		MonthKey: model.MonthKeyOf(at(9, 0)),
	}))
	// A stale strike from another month never counts.
	require.NoError(t, st.AppendStrike(model.Strike{
		ID:       "strike-old",
		UserID:   "alice@example.com",
		MonthKey: "2026-01",
	}))

	stats, err := s.Run()
	require.NoError(t, err)
	assert.Zero(t, stats.Suspensions)
}

// flakyStore fails the first n ConfigValues reads with the given message.
type flakyStore struct {
	store.Store
	failures int
	calls    int
	message  string
}

func (f *flakyStore) ConfigValues() (map[string]string, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New(f.message)
	}
	return f.Store.ConfigValues()
}

func TestRunRetriesTransientError(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(st, "admin@example.com"))
	flaky := &flakyStore{Store: st, failures: 1, message: "a server error occurred while reading"}

	var slept []time.Duration
	s := New(flaky,
		WithClock(&stepClock{t: at(11, 0)}),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)

	stats, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Attempts)
	assert.Equal(t, []time.Duration{defaultDelay}, slept)
}

func TestRunExhaustsRetryBudget(t *testing.T) {
	st := store.NewMemoryStore()
	flaky := &flakyStore{Store: st, failures: 10, message: "request timed out"}
	s := New(flaky,
		WithClock(&stepClock{t: at(11, 0)}),
		WithRetry(2, 0),
		WithSleep(func(time.Duration) {}),
	)

	_, err := s.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep failed after 2 attempts")
	assert.Equal(t, 2, flaky.calls)
}

func TestRunDoesNotRetryDataErrors(t *testing.T) {
	st := store.NewMemoryStore()
	flaky := &flakyStore{Store: st, failures: 10, message: "row 7 has no user id"}
	s := New(flaky,
		WithClock(&stepClock{t: at(11, 0)}),
		WithSleep(func(time.Duration) {}),
	)

	stats, err := s.Run()
	require.Error(t, err)
	assert.Equal(t, "row 7 has no user id", err.Error())
	assert.Equal(t, 1, flaky.calls, "no retry on non-transient errors")
	assert.NotZero(t, stats.Duration, "error-path stats still carry the elapsed time")
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil, DefaultRetryablePatterns))
	assert.True(t, IsTransient(errors.New("A Server Error Occurred, try again"), DefaultRetryablePatterns))
	assert.True(t, IsTransient(fmt.Errorf("read sheet: %w", errors.New("connection reset by peer")), DefaultRetryablePatterns))
	assert.False(t, IsTransient(errors.New("malformed config value"), DefaultRetryablePatterns))
	assert.True(t, IsTransient(errors.New("boom"), []string{"boom"}))
}

func TestAddBusinessDays(t *testing.T) {
	friday := time.Date(2026, time.February, 13, 9, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, time.February, 17, 9, 0, 0, 0, time.Local), addBusinessDays(friday, 2), "weekend skipped")
	assert.Equal(t, friday, addBusinessDays(friday, 0))
}
