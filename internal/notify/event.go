// Package notify defines the messages published when a registration
// outcome needs a confirmation or waitlist email, and the consumer
// that processes them.  Publication failures are logged and never roll
// back the registration they describe.
package notify

// Kinds of registration notifications.
const (
	KindConfirmed = "registration.confirmed"
	KindWaitlisted = "registration.waitlisted"
	KindPromoted  = "waitlist.promoted"
)

// RegistrationEvent is published after a create or promotion
// completes.  It carries enough context for downstream consumers to
// render a confirmation or waitlist-position email without querying
// the primary database.
type RegistrationEvent struct {
	Kind             string `json:"kind"`
	TenantID         uint64 `json:"tenant_id"`
	RegistrationID   uint64 `json:"registration_id"`
	EventID          uint64 `json:"event_id"`
	EventTitle       string `json:"event_title"`
	OccurrenceDate   string `json:"occurrence_date,omitempty"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	WaitlistPosition int    `json:"waitlist_position,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}
