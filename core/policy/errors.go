package policy

import "errors"

// Stable codes for policy violations. The board and the boundary key off
// these; messages are user-facing and may change wording.
const (
	CodeBookingNotOpenYet         = "booking_not_open_yet"
	CodeOnlyTodayAllowed          = "only_today_allowed"
	CodeDuplicateDailyReservation = "duplicate_daily_reservation"
	CodeSlotTaken                 = "slot_taken"
	CodeSlotMismatch              = "slot_mismatch"
	CodeSlotStarted               = "slot_started"
	CodeCheckInWindowClosed       = "check_in_window_closed"
	CodeChargerReservedByOther    = "charger_reserved_by_other"
	CodeChargerInUse              = "charger_in_use"
	CodeNoSlotOpen                = "no_slot_open"
	CodeWalkUpNotOpen             = "walkup_not_open"
	CodeAlreadyReserved           = "already_reserved"
	CodeSuspended                 = "suspended"
	CodeDomainNotAllowed          = "domain_not_allowed"
	CodeNotCancelable             = "not_cancelable"
	CodeNotUpdatable              = "not_updatable"
	CodeSessionNotActive          = "session_not_active"
	CodeInvalidArgument           = "invalid_argument"
)

// ViolationError reports a request the policy forbids. It is user-facing and
// never retried.
type ViolationError struct {
	Code    string
	Message string
}

func (e *ViolationError) Error() string { return e.Message }

// Violation builds a ViolationError.
func Violation(code, message string) error {
	return &ViolationError{Code: code, Message: message}
}

// AuthError reports a missing admin privilege.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ErrAdminRequired gates force-end, reset and other cross-user actions.
func ErrAdminRequired() error { return &AuthError{Message: "Admin access required."} }

// NotFoundError reports a reference to an unknown or mismatched entity.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFound builds a NotFoundError.
func NotFound(message string) error { return &NotFoundError{Message: message} }

// IntegrityError reports corrupt stored data, e.g. a malformed config value.
// It surfaces immediately and is never retried.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string { return e.Message }

// Integrity builds an IntegrityError.
func Integrity(message string) error { return &IntegrityError{Message: message} }

// IsViolation reports whether err is a policy violation, optionally returning it.
func IsViolation(err error) (*ViolationError, bool) {
	var v *ViolationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsIntegrity reports whether err is an IntegrityError.
func IsIntegrity(err error) bool {
	var i *IntegrityError
	return errors.As(err, &i)
}
