package model

import "time"

// RegistrationStatus enumerates the lifecycle states of a registration.
// Allowed transitions: REGISTERED ⇄ CHECKED_IN (undo allowed);
// REGISTERED → NO_SHOW (terminal, not reachable from CHECKED_IN);
// any of REGISTERED/WAITLISTED/CHECKED_IN → CANCELLED (terminal);
// WAITLISTED → REGISTERED only through system-driven promotion.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "REGISTERED"
	StatusWaitlisted RegistrationStatus = "WAITLISTED"
	StatusCheckedIn  RegistrationStatus = "CHECKED_IN"
	StatusCancelled  RegistrationStatus = "CANCELLED"
	StatusNoShow     RegistrationStatus = "NO_SHOW"
)

// HoldsSlot reports whether a registration in this status consumes a
// capacity slot.  Waitlisted, cancelled and no-show rows do not.
func (s RegistrationStatus) HoldsSlot() bool {
	return s == StatusRegistered || s == StatusCheckedIn
}

// Registration records one attendee for one occurrence of an event.
// OccurrenceDate is nil for non-recurring events.  WaitlistPosition is
// non-nil exactly when Status is WAITLISTED, and positions for one
// occurrence always form a dense 1..K sequence.  AccessToken is the
// opaque bearer credential for unauthenticated self-service; it is
// generated once and never changes.
//
// Fields:
//  ID                  – primary key identifier.
//  TenantID            – owning tenant.
//  EventID             – master event being registered for.
//  OccurrenceDate      – concrete date instance, nil for one-off events.
//  Email               – lowercase-normalized contact address.
//  FirstName, LastName – attendee name.
//  Phone               – optional phone number.
//  AdditionalAttendees – extra seats consumed beyond the registrant.
//  Status              – lifecycle state, see RegistrationStatus.
//  WaitlistPosition    – 1-based dense rank while waitlisted.
//  AccessToken         – opaque self-service bearer token, unique.
//  CheckedInAt         – when the attendee was checked in.
//  CheckedInBy         – staff account that performed the check-in.
//  ReminderOptIn       – whether the attendee opted into reminders.
type Registration struct {
	ID                  uint64             // registrations.id
	TenantID            uint64             // registrations.tenant_id
	EventID             uint64             // registrations.event_id
	OccurrenceDate      *time.Time         // registrations.occurrence_date (nullable)
	Email               string             // registrations.email
	FirstName           string             // registrations.first_name
	LastName            string             // registrations.last_name
	Phone               *string            // registrations.phone (nullable)
	AdditionalAttendees int                // registrations.additional_attendees
	Status              RegistrationStatus // registrations.status
	WaitlistPosition    *int               // registrations.waitlist_position (nullable)
	AccessToken         string             // registrations.access_token
	CheckedInAt         *time.Time         // registrations.checked_in_at (nullable)
	CheckedInBy         *uint64            // registrations.checked_in_by (nullable)
	ReminderOptIn       bool               // registrations.reminder_opt_in
	CreatedAt           time.Time          // registrations.created_at
	UpdatedAt           time.Time          // registrations.updated_at
}
