package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openmeadow/eventreg/internal/model"
	"github.com/openmeadow/eventreg/internal/service"
)

// regColumns lists the registrations columns in scan order.
const regColumns = `id, tenant_id, event_id, occurrence_date, email, first_name, last_name, phone,
	additional_attendees, status, waitlist_position, access_token, checked_in_at, checked_in_by,
	reminder_opt_in, created_at, updated_at`

// RegistrationRepository persists registrations and implements
// service.RegistrationStore.
//
// Serialization works the way the overbooking race demands: a naive
// read-then-write lets two transactions read the same free-capacity
// snapshot and both insert.  InOccurrenceTx therefore takes a
// pessimistic row lock on the parent event (SELECT ... FOR UPDATE)
// before the callback runs, so concurrent creates, cancels and
// promotions for any occurrence of that event queue up behind each
// other.  Operations on different events never contend.
type RegistrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository returns a repository bound to the database.
func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// InOccurrenceTx runs fn inside a transaction holding the event row
// lock.  A missing event surfaces as service.ErrStoreNotFound.  Any
// error from fn rolls the whole transaction back.
func (r *RegistrationRepository) InOccurrenceTx(ctx context.Context, tenantID, eventID uint64, fn func(service.OccurrenceTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM events WHERE id = ? AND tenant_id = ? FOR UPDATE`,
		eventID, tenantID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return service.ErrStoreNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if err := fn(&occurrenceTx{ctx: ctx, tx: tx, tenantID: tenantID, eventID: eventID}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// GetRegistration returns a tenant's registration by id.
func (r *RegistrationRepository) GetRegistration(ctx context.Context, tenantID, id uint64) (*model.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE id = ? AND tenant_id = ?`,
		id, tenantID,
	)
	return scanRegistration(row)
}

// GetByAccessToken resolves a bearer token to its registration plus a
// minimal projection of the event it belongs to.
func (r *RegistrationRepository) GetByAccessToken(ctx context.Context, tenantID uint64, token string) (*model.Registration, *model.EventSummary, error) {
	const q = `SELECT r.id, r.tenant_id, r.event_id, r.occurrence_date, r.email, r.first_name, r.last_name,
	                  r.phone, r.additional_attendees, r.status, r.waitlist_position, r.access_token,
	                  r.checked_in_at, r.checked_in_by, r.reminder_opt_in, r.created_at, r.updated_at,
	                  e.id, e.title, e.start_date, e.end_date, e.location
	           FROM registrations r
	           JOIN events e ON e.id = r.event_id AND e.tenant_id = r.tenant_id
	           WHERE r.tenant_id = ? AND r.access_token = ?`

	var (
		reg     model.Registration
		occ     sql.NullTime
		phone   sql.NullString
		pos     sql.NullInt64
		inAt    sql.NullTime
		inBy    sql.NullInt64
		sum     model.EventSummary
		evEnd   sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, tenantID, token).Scan(
		&reg.ID, &reg.TenantID, &reg.EventID, &occ, &reg.Email, &reg.FirstName, &reg.LastName,
		&phone, &reg.AdditionalAttendees, &reg.Status, &pos, &reg.AccessToken,
		&inAt, &inBy, &reg.ReminderOptIn, &reg.CreatedAt, &reg.UpdatedAt,
		&sum.ID, &sum.Title, &sum.StartDate, &evEnd, &sum.Location,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, service.ErrStoreNotFound
		}
		return nil, nil, fmt.Errorf("get by token: %w", err)
	}
	applyNullable(&reg, occ, phone, pos, inAt, inBy)
	if evEnd.Valid {
		t := evEnd.Time
		sum.EndDate = &t
	}
	return &reg, &sum, nil
}

// CountByOccurrence reads the occurrence counters outside any lock.
func (r *RegistrationRepository) CountByOccurrence(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.OccurrenceCounts, error) {
	return countOccurrence(ctx, r.db, tenantID, eventID, occurrence)
}

// StatsByOccurrence aggregates registrations by status for one
// occurrence.  totalAttendees counts heads: each active row brings
// itself plus its additional attendees.
func (r *RegistrationRepository) StatsByOccurrence(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.RegistrationStats, error) {
	const q = `SELECT status, COUNT(*), COALESCE(SUM(additional_attendees), 0)
	           FROM registrations
	           WHERE tenant_id = ? AND event_id = ? AND occurrence_date <=> ?
	           GROUP BY status`

	rows, err := r.db.QueryContext(ctx, q, tenantID, eventID, occArg(occurrence))
	if err != nil {
		return model.RegistrationStats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	defer rows.Close()

	var stats model.RegistrationStats
	for rows.Next() {
		var (
			status     string
			count      int
			additional int
		)
		if err := rows.Scan(&status, &count, &additional); err != nil {
			return model.RegistrationStats{}, fmt.Errorf("scan stats row: %w", err)
		}
		switch model.RegistrationStatus(status) {
		case model.StatusRegistered:
			stats.Registered = count
			stats.TotalAttendees += count + additional
		case model.StatusCheckedIn:
			stats.CheckedIn = count
			stats.TotalAttendees += count + additional
		case model.StatusWaitlisted:
			stats.Waitlisted = count
		case model.StatusCancelled:
			stats.Cancelled = count
		case model.StatusNoShow:
			stats.NoShow = count
		}
	}
	return stats, rows.Err()
}

// occurrenceTx is the critical-section view handed to service
// callbacks.  All statements run on the surrounding transaction while
// the event row lock is held.
type occurrenceTx struct {
	ctx      context.Context
	tx       *sql.Tx
	tenantID uint64
	eventID  uint64
}

func (o *occurrenceTx) Counts(occurrence *time.Time) (model.OccurrenceCounts, error) {
	return countOccurrence(o.ctx, o.tx, o.tenantID, o.eventID, occurrence)
}

func (o *occurrenceTx) ActiveEmailExists(occurrence *time.Time, email string) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM registrations
	             WHERE tenant_id = ? AND event_id = ? AND occurrence_date <=> ?
	               AND email = ? AND status <> 'CANCELLED')`
	var exists bool
	err := o.tx.QueryRowContext(o.ctx, q, o.tenantID, o.eventID, occArg(occurrence), email).Scan(&exists)
	return exists, err
}

func (o *occurrenceTx) Insert(reg *model.Registration) error {
	const q = `INSERT INTO registrations
	             (tenant_id, event_id, occurrence_date, email, first_name, last_name, phone,
	              additional_attendees, status, waitlist_position, access_token, reminder_opt_in)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := o.tx.ExecContext(o.ctx, q,
		reg.TenantID, reg.EventID, occArg(reg.OccurrenceDate), reg.Email, reg.FirstName, reg.LastName,
		reg.Phone, reg.AdditionalAttendees, string(reg.Status), reg.WaitlistPosition, reg.AccessToken,
		reg.ReminderOptIn,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("registration insert id: %w", err)
	}
	reg.ID = uint64(id)
	return nil
}

func (o *occurrenceTx) Get(id uint64) (*model.Registration, error) {
	row := o.tx.QueryRowContext(o.ctx,
		`SELECT `+regColumns+` FROM registrations WHERE id = ? AND tenant_id = ?`,
		id, o.tenantID,
	)
	return scanRegistration(row)
}

func (o *occurrenceTx) Update(reg *model.Registration) error {
	const q = `UPDATE registrations
	           SET status = ?, waitlist_position = ?, checked_in_at = ?, checked_in_by = ?
	           WHERE id = ? AND tenant_id = ?`
	_, err := o.tx.ExecContext(o.ctx, q,
		string(reg.Status), reg.WaitlistPosition, reg.CheckedInAt, reg.CheckedInBy,
		reg.ID, reg.TenantID,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return nil
}

func (o *occurrenceTx) LowestWaitlisted(occurrence *time.Time) (*model.Registration, error) {
	row := o.tx.QueryRowContext(o.ctx,
		`SELECT `+regColumns+` FROM registrations
		 WHERE tenant_id = ? AND event_id = ? AND occurrence_date <=> ? AND status = 'WAITLISTED'
		 ORDER BY waitlist_position ASC
		 LIMIT 1`,
		o.tenantID, o.eventID, occArg(occurrence),
	)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reg, nil
}

func (o *occurrenceTx) ShiftWaitlistDown(occurrence *time.Time, above int) error {
	_, err := o.tx.ExecContext(o.ctx,
		`UPDATE registrations
		 SET waitlist_position = waitlist_position - 1
		 WHERE tenant_id = ? AND event_id = ? AND occurrence_date <=> ?
		   AND status = 'WAITLISTED' AND waitlist_position > ?`,
		o.tenantID, o.eventID, occArg(occurrence), above,
	)
	if err != nil {
		return fmt.Errorf("shift waitlist positions: %w", err)
	}
	return nil
}

// queryer lets the count query run on either the pool or a transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countOccurrence(ctx context.Context, q queryer, tenantID, eventID uint64, occurrence *time.Time) (model.OccurrenceCounts, error) {
	const query = `SELECT
	                 COALESCE(SUM(status IN ('REGISTERED', 'CHECKED_IN')), 0),
	                 COALESCE(SUM(status = 'WAITLISTED'), 0)
	               FROM registrations
	               WHERE tenant_id = ? AND event_id = ? AND occurrence_date <=> ?`
	var counts model.OccurrenceCounts
	err := q.QueryRowContext(ctx, query, tenantID, eventID, occArg(occurrence)).Scan(&counts.Registered, &counts.Waitlisted)
	if err != nil {
		return model.OccurrenceCounts{}, fmt.Errorf("count occurrence: %w", err)
	}
	return counts, nil
}

// occArg renders an occurrence date for a DATE column.  nil stays nil
// so the null-safe <=> comparison matches non-recurring rows.
func occArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

func scanRegistration(row *sql.Row) (*model.Registration, error) {
	var (
		reg   model.Registration
		occ   sql.NullTime
		phone sql.NullString
		pos   sql.NullInt64
		inAt  sql.NullTime
		inBy  sql.NullInt64
	)
	err := row.Scan(
		&reg.ID, &reg.TenantID, &reg.EventID, &occ, &reg.Email, &reg.FirstName, &reg.LastName,
		&phone, &reg.AdditionalAttendees, &reg.Status, &pos, &reg.AccessToken,
		&inAt, &inBy, &reg.ReminderOptIn, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrStoreNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	applyNullable(&reg, occ, phone, pos, inAt, inBy)
	return &reg, nil
}

func applyNullable(reg *model.Registration, occ sql.NullTime, phone sql.NullString, pos sql.NullInt64, inAt sql.NullTime, inBy sql.NullInt64) {
	if occ.Valid {
		t := occ.Time
		reg.OccurrenceDate = &t
	}
	if phone.Valid {
		p := phone.String
		reg.Phone = &p
	}
	if pos.Valid {
		p := int(pos.Int64)
		reg.WaitlistPosition = &p
	}
	if inAt.Valid {
		t := inAt.Time
		reg.CheckedInAt = &t
	}
	if inBy.Valid {
		b := uint64(inBy.Int64)
		reg.CheckedInBy = &b
	}
}
