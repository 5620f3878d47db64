package model

import "time"

// ReservationStatus is the authoritative lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCheckedIn ReservationStatus = "checked_in"
	ReservationComplete  ReservationStatus = "complete"
	ReservationCanceled  ReservationStatus = "canceled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Reservation is a claim on one charger slot for one user. Start always
// equals a configured slot start on some calendar day; End is start plus the
// charger's maximum session minutes.
type Reservation struct {
	ID        string            `json:"reservation_id"`
	ChargerID string            `json:"charger_id"`
	UserID    string            `json:"user_id"`
	UserName  string            `json:"user_name"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    ReservationStatus `json:"status"`

	CheckedInAt    time.Time `json:"checked_in_at,omitempty"`
	NoShowAt       time.Time `json:"no_show_at,omitempty"`
	NoShowStrikeAt time.Time `json:"no_show_strike_at,omitempty"`

	ReminderBeforeSent bool `json:"reminder_5_before_sent"`
	ReminderAfterSent  bool `json:"reminder_5_after_sent"`

	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CanceledAt time.Time `json:"canceled_at,omitempty"`
}

// Holds reports whether the reservation still claims its slot (not yet
// finished, canceled or voided by a no-show).
func (r Reservation) Holds() bool {
	return r.Status == ReservationActive || r.Status == ReservationCheckedIn
}

// CountsForDailyLimit reports whether the reservation consumes the holder's
// daily allowance. Completed reservations still count; canceled and no-show
// ones do not.
func (r Reservation) CountsForDailyLimit() bool {
	return r.Status != ReservationCanceled && r.Status != ReservationNoShow
}

// Window returns the reservation's slot window.
func (r Reservation) Window() SlotWindow {
	return SlotWindow{Start: r.StartTime, End: r.EndTime}
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
