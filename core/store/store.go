// Package store defines the tabular store adapter: every logical table is an
// ordered collection of typed records keyed by a stable id. The engines hold
// no private copies across calls; each operation re-reads then re-writes the
// rows it needs, so the store stays the single source of truth.
package store

import "github.com/evpark/evpark/core/model"

// Store is the adapter over the five entity tables plus the flat config
// table and raw properties. Implementations return defensive copies; lookups
// by id may be O(n) for fleets this small.
type Store interface {
	Chargers() ([]model.Charger, error)
	AppendCharger(model.Charger) error
	UpdateCharger(model.Charger) error

	Sessions() ([]model.Session, error)
	AppendSession(model.Session) error
	UpdateSession(model.Session) error

	Reservations() ([]model.Reservation, error)
	AppendReservation(model.Reservation) error
	UpdateReservation(model.Reservation) error

	Strikes() ([]model.Strike, error)
	AppendStrike(model.Strike) error

	Suspensions() ([]model.Suspension, error)
	AppendSuspension(model.Suspension) error
	UpdateSuspension(model.Suspension) error

	ConfigValues() (map[string]string, error)
	SetConfigValue(key, value string) error

	Property(key string) (string, error)
	SetProperty(key, value string) error
}
