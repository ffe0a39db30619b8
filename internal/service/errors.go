// Package service implements the registration engine: capacity
// decisions, the registration lifecycle, waitlist promotion and the
// derived capacity/stat reads.  It owns all business rules; storage is
// reached through the narrow interfaces in store.go so the engine can
// be exercised against any backend that honors the same serialization
// contract.
package service

import "errors"

// Sentinel errors returned by RegistrationService.  All of these are
// caller-recoverable validation outcomes, never system faults; the
// HTTP layer maps them onto 4xx responses.
var (
	// ErrEventNotFound covers both a missing event and an event owned
	// by another tenant; the two are indistinguishable on purpose.
	ErrEventNotFound = errors.New("event not found")

	// ErrRegistrationNotFound covers a missing registration, a
	// cross-tenant id, and a mismatched access token.  A wrong token
	// must look exactly like a missing row so the public path never
	// confirms that a given id exists.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrRegistrationNotEnabled means the event does not accept
	// registrations at all.
	ErrRegistrationNotEnabled = errors.New("registration is not enabled for this event")

	// ErrDeadlinePassed means the registration deadline is in the past,
	// regardless of remaining capacity.
	ErrDeadlinePassed = errors.New("registration deadline has passed")

	// ErrAlreadyRegistered means an active registration with the same
	// email already exists for the occurrence.
	ErrAlreadyRegistered = errors.New("email already registered for this occurrence")

	// ErrCapacityFull means the occurrence is full and the event has no
	// waitlist.
	ErrCapacityFull = errors.New("event occurrence is at capacity")

	// ErrAlreadyCancelled rejects any action on a cancelled row.
	ErrAlreadyCancelled = errors.New("registration is already cancelled")

	// ErrAlreadyCheckedIn rejects a second check-in.  Deliberately an
	// error rather than a silent no-op: callers wanting idempotency
	// must inspect status first.
	ErrAlreadyCheckedIn = errors.New("registration is already checked in")

	// ErrNotCheckedIn rejects undoing a check-in that never happened.
	ErrNotCheckedIn = errors.New("registration is not checked in")

	// ErrNotRegistered rejects check-in or no-show from a state that
	// holds no seat (waitlisted) or is terminal (no-show).  Waitlisted
	// rows must be promoted before they can be checked in.
	ErrNotRegistered = errors.New("registration is not in registered state")

	// ErrInvalidInput wraps field-level validation failures on create.
	ErrInvalidInput = errors.New("invalid input")
)
