// Package repository implements the service store interfaces on top of
// MySQL via database/sql.  Every query is scoped by tenant id; the
// per-occurrence serialization contract is provided by locking the
// parent event row with SELECT ... FOR UPDATE inside a transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openmeadow/eventreg/internal/model"
	"github.com/openmeadow/eventreg/internal/recurrence"
	"github.com/openmeadow/eventreg/internal/service"
)

// EventRepository provides read access to master events.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository returns an EventRepository bound to the database.
func NewEventRepository(db *sql.DB) *EventRepository { return &EventRepository{db: db} }

// GetEvent returns a tenant's event or service.ErrStoreNotFound.  The
// recurrence columns are folded into a recurrence.Rule; a row whose
// frequency column is empty or unknown yields a nil rule, so a
// corrupted frequency degrades to a one-off event instead of an error.
func (r *EventRepository) GetEvent(ctx context.Context, tenantID, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, tenant_id, title, description, location, start_date, end_date, timezone,
	                  registration_enabled, capacity, waitlist_enabled, registration_deadline,
	                  frequency, recur_interval, days_of_week, day_of_month, recurrence_end_date, recurrence_count,
	                  created_at, updated_at
	           FROM events
	           WHERE id = ? AND tenant_id = ?`

	var (
		ev        model.Event
		endDate   sql.NullTime
		capacity  sql.NullInt64
		deadline  sql.NullTime
		frequency sql.NullString
		interval  sql.NullInt64
		daysBits  sql.NullInt64
		dayOfMon  sql.NullInt64
		recurEnd  sql.NullTime
		recurCnt  sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, eventID, tenantID).Scan(
		&ev.ID, &ev.TenantID, &ev.Title, &ev.Description, &ev.Location, &ev.StartDate, &endDate, &ev.Timezone,
		&ev.RegistrationEnabled, &capacity, &ev.WaitlistEnabled, &deadline,
		&frequency, &interval, &daysBits, &dayOfMon, &recurEnd, &recurCnt,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrStoreNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if endDate.Valid {
		t := endDate.Time
		ev.EndDate = &t
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		ev.Capacity = &c
	}
	if deadline.Valid {
		t := deadline.Time
		ev.RegistrationDeadline = &t
	}
	if frequency.Valid {
		if freq, ok := recurrence.ParseFrequency(frequency.String); ok {
			rule := &recurrence.Rule{Frequency: freq}
			if interval.Valid {
				rule.Interval = int(interval.Int64)
			}
			if daysBits.Valid {
				rule.Days = recurrence.WeekdaySetFromBits(uint8(daysBits.Int64))
			}
			if dayOfMon.Valid {
				rule.DayOfMonth = int(dayOfMon.Int64)
			}
			if recurEnd.Valid {
				t := recurEnd.Time
				rule.EndDate = &t
			}
			if recurCnt.Valid {
				rule.Count = int(recurCnt.Int64)
			}
			ev.Recurrence = rule
		}
	}
	return &ev, nil
}
