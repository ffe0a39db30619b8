package service

import (
	"context"
	"errors"
	"time"

	"github.com/openmeadow/eventreg/internal/model"
)

// ErrStoreNotFound is the storage-level "no such row" sentinel.  Store
// implementations return it (or wrap it) from every lookup that comes
// up empty; the service translates it into the matching domain error.
var ErrStoreNotFound = errors.New("store: not found")

// EventStore provides tenant-scoped read access to master events.
type EventStore interface {
	// GetEvent returns the event or ErrStoreNotFound.  An event owned
	// by a different tenant is reported as not found.
	GetEvent(ctx context.Context, tenantID, eventID uint64) (*model.Event, error)
}

// RegistrationStore provides tenant-scoped access to registrations.
//
// The concurrency contract: InOccurrenceTx serializes its callback
// against every other InOccurrenceTx call for the same event, across
// all processes sharing the backing store.  The SQL implementation
// takes a row lock on the event; the in-memory test store holds a
// per-event mutex.  Every mutation of the per-occurrence registration
// count or of the waitlist rank sequence must happen inside such a
// callback.  An error from the callback rolls back everything the
// callback wrote.
type RegistrationStore interface {
	InOccurrenceTx(ctx context.Context, tenantID, eventID uint64, fn func(OccurrenceTx) error) error

	// GetRegistration returns the row or ErrStoreNotFound.
	GetRegistration(ctx context.Context, tenantID, id uint64) (*model.Registration, error)

	// GetByAccessToken resolves a bearer token to its registration and
	// the minimal projection of its event, or ErrStoreNotFound.
	GetByAccessToken(ctx context.Context, tenantID uint64, token string) (*model.Registration, *model.EventSummary, error)

	// CountByOccurrence returns the slot and waitlist counters for one
	// occurrence.  Plain read; fine for status displays, but capacity
	// decisions must use OccurrenceTx.Counts instead.
	CountByOccurrence(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.OccurrenceCounts, error)

	// StatsByOccurrence aggregates rows by status and totals attendees.
	StatsByOccurrence(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.RegistrationStats, error)
}

// OccurrenceTx exposes the storage primitives available inside the
// per-event critical section.  Implementations scope every operation
// to the tenant and event the transaction was opened for.
type OccurrenceTx interface {
	// Counts returns fresh per-occurrence counters under the lock.
	Counts(occurrence *time.Time) (model.OccurrenceCounts, error)

	// ActiveEmailExists reports whether a non-cancelled registration
	// with this (already normalized) email exists for the occurrence.
	ActiveEmailExists(occurrence *time.Time, email string) (bool, error)

	// Insert persists a new registration and fills in its ID.
	Insert(reg *model.Registration) error

	// Get re-reads a registration inside the critical section, or
	// returns ErrStoreNotFound.
	Get(id uint64) (*model.Registration, error)

	// Update persists status, waitlist position and check-in fields.
	Update(reg *model.Registration) error

	// LowestWaitlisted returns the waitlisted row with the smallest
	// position for the occurrence, or nil when the waitlist is empty.
	LowestWaitlisted(occurrence *time.Time) (*model.Registration, error)

	// ShiftWaitlistDown decrements the position of every waitlisted row
	// for the occurrence whose position is greater than above.
	ShiftWaitlistDown(occurrence *time.Time, above int) error
}
