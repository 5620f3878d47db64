package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/policy"
)

// CreateReservation books the slot starting at startISO on the charger for
// the actor, enforcing the full eligibility check.
func (e *Engine) CreateReservation(actor model.Actor, chargerID, startISO string) (*BoardData, error) {
	board, err := e.createReservation(actor, chargerID, startISO)
	e.record("reserve", err)
	return board, err
}

func (e *Engine) createReservation(actor model.Actor, chargerID, startISO string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	start, err := parseStartTime(startISO)
	if err != nil {
		return nil, err
	}
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReserve(cfg, snap, actor, charger, start, now); err != nil {
		return nil, err
	}
	res := model.Reservation{
		ID:        uuid.NewString(),
		ChargerID: charger.ID,
		UserID:    actor.Email,
		UserName:  actor.Name,
		StartTime: start,
		EndTime:   start.Add(time.Duration(charger.MaxMinutes) * time.Minute),
		Status:    model.ReservationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.st.AppendReservation(res); err != nil {
		return nil, err
	}
	e.log.Infof("reservation %s created by %s on charger %s", res.ID, actor.Email, charger.ID)
	return e.projectBoard(actor, now)
}

// UpdateReservation moves an active reservation to another charger or slot,
// re-running eligibility with the reservation itself excluded.
func (e *Engine) UpdateReservation(actor model.Actor, id, chargerID, startISO string) (*BoardData, error) {
	board, err := e.updateReservation(actor, id, chargerID, startISO)
	e.record("update-reservation", err)
	return board, err
}

func (e *Engine) updateReservation(actor model.Actor, id, chargerID, startISO string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	start, err := parseStartTime(startISO)
	if err != nil {
		return nil, err
	}
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	res, err := reservationByID(snap, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.Email && !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	if res.Status != model.ReservationActive {
		return nil, policy.Violation(policy.CodeNotUpdatable, "Only active reservations can be updated.")
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return nil, err
	}
	others := snap
	others.Reservations = make([]model.Reservation, 0, len(snap.Reservations)-1)
	for _, r := range snap.Reservations {
		if r.ID != res.ID {
			others.Reservations = append(others.Reservations, r)
		}
	}
	if err := policy.CanReserve(cfg, others, actor, charger, start, now); err != nil {
		return nil, err
	}
	res.ChargerID = charger.ID
	res.StartTime = start
	res.EndTime = start.Add(time.Duration(charger.MaxMinutes) * time.Minute)
	res.UpdatedAt = now
	if err := e.st.UpdateReservation(res); err != nil {
		return nil, err
	}
	return e.projectBoard(actor, now)
}

// CancelReservation releases a held slot. Cancellations at or after the
// slot midpoint count against the holder's walk-up standing.
func (e *Engine) CancelReservation(actor model.Actor, id string) (*BoardData, error) {
	board, err := e.cancelReservation(actor, id)
	e.record("cancel-reservation", err)
	return board, err
}

func (e *Engine) cancelReservation(actor model.Actor, id string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	res, err := reservationByID(snap, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.Email && !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	if !res.Holds() {
		return nil, policy.Violation(policy.CodeNotCancelable, "This reservation can no longer be canceled.")
	}
	res.Status = model.ReservationCanceled
	res.CanceledAt = now
	res.UpdatedAt = now
	if err := e.st.UpdateReservation(res); err != nil {
		return nil, err
	}
	e.log.Infof("reservation %s canceled by %s", res.ID, actor.Email)
	return e.projectBoard(actor, now)
}

// CheckIn claims a held reservation and starts its charging session. Allowed
// only within the check-in window around the slot start.
func (e *Engine) CheckIn(actor model.Actor, id string) (*BoardData, error) {
	board, err := e.checkIn(actor, id)
	e.record("check-in", err)
	return board, err
}

func (e *Engine) checkIn(actor model.Actor, id string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	res, err := reservationByID(snap, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.Email && !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	if _, err := e.checkInLocked(cfg, snap, res, now); err != nil {
		return nil, err
	}
	return e.projectBoard(actor, now)
}

// checkInLocked transitions the reservation to checked_in and opens its
// session. Callers hold the engine lock.
func (e *Engine) checkInLocked(cfg policy.Config, snap policy.Snapshot, res model.Reservation, now time.Time) (model.Session, error) {
	if res.Status != model.ReservationActive {
		return model.Session{}, policy.Violation(policy.CodeNotUpdatable, "This reservation cannot be checked in.")
	}
	if now.Before(res.StartTime.Add(-earlyCheckIn)) || now.After(res.StartTime.Add(cfg.LateGrace())) {
		return model.Session{}, policy.Violation(policy.CodeCheckInWindowClosed, "Check-in window is closed.")
	}
	charger, err := chargerByID(snap, res.ChargerID)
	if err != nil {
		return model.Session{}, err
	}
	for _, s := range snap.Sessions {
		if s.ChargerID == charger.ID && s.IsActive() {
			return model.Session{}, policy.Violation(policy.CodeChargerInUse, "This charger is already in use.")
		}
	}
	sess, err := e.openSession(charger, res.UserID, res.UserName, now)
	if err != nil {
		return model.Session{}, err
	}
	res.Status = model.ReservationCheckedIn
	res.CheckedInAt = now
	res.UpdatedAt = now
	if err := e.st.UpdateReservation(res); err != nil {
		return model.Session{}, err
	}
	e.log.Infof("reservation %s checked in, session %s opened", res.ID, sess.ID)
	return sess, nil
}

// earlyCheckIn is how long before the slot start a check-in is accepted.
const earlyCheckIn = 10 * time.Minute
