package model

import (
	"time"

	"github.com/openmeadow/eventreg/internal/recurrence"
)

// Event is the master record created by content staff.  It is never
// itself the unit of registration: attendees register against an
// occurrence, identified by (event ID, occurrence date).  For
// non-recurring events the occurrence date is null and the event's
// start date stands in for it on display paths.
//
// Fields:
//  ID                   – primary key identifier.
//  TenantID             – owning tenant; every query is scoped by it.
//  Title                – display title.
//  Description          – optional long description.
//  Location             – optional venue or address text.
//  StartDate            – first (or only) occurrence date.
//  EndDate              – optional end date for multi-day events.
//  Timezone             – IANA zone name used by display layers.
//  RegistrationEnabled  – whether the public create path is open.
//  Capacity             – maximum active registrations per occurrence;
//                         nil means uncapped.
//  WaitlistEnabled      – whether a full occurrence accepts waitlist rows.
//  RegistrationDeadline – optional cut-off after which creates fail.
//  Recurrence           – optional rule expanding StartDate into a series;
//                         nil for one-off events.
type Event struct {
	ID                   uint64           // events.id
	TenantID             uint64           // events.tenant_id
	Title                string           // events.title
	Description          string           // events.description
	Location             string           // events.location
	StartDate            time.Time        // events.start_date
	EndDate              *time.Time       // events.end_date (nullable)
	Timezone             string           // events.timezone
	RegistrationEnabled  bool             // events.registration_enabled
	Capacity             *int             // events.capacity (nullable = uncapped)
	WaitlistEnabled      bool             // events.waitlist_enabled
	RegistrationDeadline *time.Time       // events.registration_deadline (nullable)
	Recurrence           *recurrence.Rule // events.frequency .. events.recurrence_count
	CreatedAt            time.Time        // events.created_at
	UpdatedAt            time.Time        // events.updated_at
}

// EventSummary is the minimal event projection returned alongside a
// registration on the public token-lookup path.  It deliberately
// excludes capacity and recurrence internals.
type EventSummary struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Location  string     `json:"location,omitempty"`
}

// Summary builds the public projection for an event.
func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:        e.ID,
		Title:     e.Title,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		Location:  e.Location,
	}
}
