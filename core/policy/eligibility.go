// Package policy implements the eligibility rules of the charger fleet:
// who may reserve, who may walk up and when, and which walk-up priority
// tier currently applies. All functions are pure: they take table snapshots
// and a single wall-clock instant and never touch the store.
package policy

import (
	"fmt"
	"time"

	"github.com/evpark/evpark/core/model"
)

// Snapshot carries the table state an eligibility decision is computed from.
type Snapshot struct {
	Chargers     []model.Charger
	Sessions     []model.Session
	Reservations []model.Reservation
	Suspensions  []model.Suspension
}

// Tier is the walk-up priority class currently admitted to a slot.
type Tier int

const (
	TierClosed Tier = iota
	TierNetNew
	TierReturning
	TierAll
)

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierNetNew:
		return "tier1_net_new"
	case TierReturning:
		return "tier2_returning"
	case TierAll:
		return "tier3_all"
	default:
		return "closed"
	}
}

// Standing classifies a user's history against one charger slot.
type Standing int

const (
	StandingNetNew Standing = iota
	StandingReturning
)

// StartDecision is the outcome of CanStartSession: either a plain walk-up
// into Slot, or a check-in when the actor holds OwnReservation for it.
type StartDecision struct {
	Slot           model.SlotWindow
	OwnReservation *model.Reservation
}

// CanReserve decides whether the actor may create a reservation starting at
// start on the given charger. It returns nil when the request is allowed and
// a ViolationError otherwise. now and start are compared in now's location.
func CanReserve(cfg Config, snap Snapshot, actor model.Actor, charger model.Charger, start, now time.Time) error {
	if susp := ActiveSuspension(snap, actor.Email, now); susp != nil {
		return Violation(CodeSuspended, fmt.Sprintf("Your booking access is suspended until %s.", susp.EndAt.Format("Jan 2")))
	}
	if cfg.AllowedDomain != "" && !hasDomain(actor.Email, cfg.AllowedDomain) {
		return Violation(CodeDomainNotAllowed, fmt.Sprintf("Reservations are limited to %s accounts.", cfg.AllowedDomain))
	}
	if now.Before(cfg.OpenTimeOn(now)) {
		return Violation(CodeBookingNotOpenYet, fmt.Sprintf("Booking opens at %s.", cfg.OpenTimeOn(now).Format("3:04 PM")))
	}
	if !model.SameDay(now, start) {
		return Violation(CodeOnlyTodayAllowed, "Reservations can only be made for today.")
	}
	slot, ok, err := charger.SlotWindowStartingAt(start)
	if err != nil {
		return Integrity(err.Error())
	}
	if !ok {
		return Violation(CodeSlotMismatch, "Start time does not match a slot on this charger.")
	}
	if !now.Before(slot.Start.Add(cfg.LateGrace())) {
		return Violation(CodeSlotStarted, "This slot has already started.")
	}
	held := 0
	for _, r := range snap.Reservations {
		if r.UserID == actor.Email && model.SameDay(now, r.StartTime) && r.CountsForDailyLimit() {
			held++
		}
	}
	if held >= cfg.MaxPerDay {
		return Violation(CodeDuplicateDailyReservation, "You already have a reservation for today.")
	}
	for _, r := range snap.Reservations {
		if r.ChargerID == charger.ID && r.Holds() && r.StartTime.Equal(slot.Start) {
			return Violation(CodeSlotTaken, "This slot is already reserved.")
		}
	}
	return nil
}

// WalkUpTier returns the priority class admitted to the slot at now, based
// on the minutes elapsed since the slot started.
func WalkUpTier(cfg Config, slot model.SlotWindow, now time.Time) Tier {
	if now.Before(slot.Start) {
		return TierClosed
	}
	elapsed := now.Sub(slot.Start)
	switch {
	case elapsed < cfg.NetNewWindow():
		return TierNetNew
	case elapsed < cfg.NetNewWindow()+cfg.ReturningWindow():
		return TierReturning
	default:
		return TierAll
	}
}

// StandingFor classifies the user's history against the charger+slot for the
// slot's calendar day. Returning means a no-show, a completed session, a
// still-holding reservation, or a cancellation at or after the slot's
// temporal midpoint; anything else is net-new.
func StandingFor(snap Snapshot, userID string, chargerID string, slot model.SlotWindow) Standing {
	mid := slot.Midpoint()
	for _, r := range snap.Reservations {
		if r.UserID != userID || r.ChargerID != chargerID || !model.SameDay(slot.Start, r.StartTime) {
			continue
		}
		if !r.StartTime.Equal(slot.Start) {
			continue
		}
		switch r.Status {
		case model.ReservationNoShow, model.ReservationComplete, model.ReservationActive, model.ReservationCheckedIn:
			return StandingReturning
		case model.ReservationCanceled:
			// The midpoint instant itself counts as a late cancellation.
			if !r.CanceledAt.Before(mid) {
				return StandingReturning
			}
		}
	}
	for _, s := range snap.Sessions {
		if s.UserID == userID && s.ChargerID == chargerID && s.Status == model.SessionComplete &&
			model.SameDay(slot.Start, s.StartTime) && s.Overlaps(slot.Start, slot.End) {
			return StandingReturning
		}
	}
	return StandingNetNew
}

// CanStartSession decides whether the actor may start charging on the
// charger right now. A successful decision is either a walk-up or, when the
// actor holds the current slot's reservation, a check-in.
func CanStartSession(cfg Config, snap Snapshot, actor model.Actor, charger model.Charger, now time.Time) (StartDecision, error) {
	if susp := ActiveSuspension(snap, actor.Email, now); susp != nil {
		return StartDecision{}, Violation(CodeSuspended, fmt.Sprintf("Your booking access is suspended until %s.", susp.EndAt.Format("Jan 2")))
	}
	for _, s := range snap.Sessions {
		if s.ChargerID == charger.ID && s.IsActive() {
			return StartDecision{}, Violation(CodeChargerInUse, "This charger is already in use.")
		}
	}
	slot, ok, err := charger.SlotWindowAt(now)
	if err != nil {
		return StartDecision{}, Integrity(err.Error())
	}
	if !ok {
		return StartDecision{}, Violation(CodeNoSlotOpen, "No slot is open on this charger right now.")
	}

	var holder *model.Reservation
	for i, r := range snap.Reservations {
		if r.ChargerID == charger.ID && r.Holds() && r.StartTime.Equal(slot.Start) {
			holder = &snap.Reservations[i]
			break
		}
	}
	if holder != nil && now.Before(slot.Start.Add(cfg.LateGrace())) {
		if holder.UserID == actor.Email {
			return StartDecision{Slot: slot, OwnReservation: holder}, nil
		}
		return StartDecision{}, Violation(CodeChargerReservedByOther, "This charger is reserved by another user.")
	}
	// Past the grace a held slot reopens to walk-ups; the lapsed holder
	// counts as returning via StandingFor.

	for _, r := range snap.Reservations {
		if r.UserID != actor.Email || !r.Holds() || !model.SameDay(now, r.StartTime) {
			continue
		}
		if r.ChargerID == charger.ID && r.StartTime.Equal(slot.Start) {
			continue
		}
		return StartDecision{}, Violation(CodeAlreadyReserved, "You already have an active reservation today.")
	}

	tier := WalkUpTier(cfg, slot, now)
	standing := StandingFor(snap, actor.Email, charger.ID, slot)
	if tier == TierNetNew && standing != StandingNetNew {
		opens := slot.Start.Add(cfg.NetNewWindow())
		return StartDecision{}, Violation(CodeWalkUpNotOpen, fmt.Sprintf("Walk-up opens at %s for returning drivers.", opens.Format("3:04 PM")))
	}
	return StartDecision{Slot: slot}, nil
}

// ActiveSuspension returns the suspension blocking the user at now, if any.
func ActiveSuspension(snap Snapshot, userID string, now time.Time) *model.Suspension {
	for i, s := range snap.Suspensions {
		if s.UserID == userID && s.Active && s.Covers(now) {
			return &snap.Suspensions[i]
		}
	}
	return nil
}

func hasDomain(email, domain string) bool {
	n := len(email) - len(domain) - 1
	return n > 0 && email[n] == '@' && email[n+1:] == domain
}
