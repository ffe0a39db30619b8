package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openmeadow/eventreg/internal/model"
	"github.com/openmeadow/eventreg/internal/recurrence"
	"github.com/openmeadow/eventreg/internal/utils"
)

// maxOccurrencesPerQuery caps a single calendar expansion so an
// unbounded query window cannot balloon a response.
const maxOccurrencesPerQuery = 366

// RegistrationService orchestrates all registration operations for all
// tenants.  It is safe for concurrent use; per-occurrence ordering is
// delegated to the RegistrationStore serialization contract.
type RegistrationService struct {
	events EventStore
	regs   RegistrationStore
	now    func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(events EventStore, regs RegistrationStore) *RegistrationService {
	return &RegistrationService{events: events, regs: regs, now: time.Now}
}

// CreateInput carries a public registration request.  The email is
// normalized by the service; callers pass it as received.
type CreateInput struct {
	TenantID            uint64
	EventID             uint64
	OccurrenceDate      *time.Time
	Email               string
	FirstName           string
	LastName            string
	Phone               *string
	AdditionalAttendees int
	ReminderOptIn       bool
}

// CancelOutcome reports a completed cancellation and, when the freed
// slot was handed to the waitlist, the promoted registration.
type CancelOutcome struct {
	Cancelled *model.Registration
	Promoted  *model.Registration
}

// GetEvent returns a tenant's event.
func (s *RegistrationService) GetEvent(ctx context.Context, tenantID, eventID uint64) (*model.Event, error) {
	ev, err := s.events.GetEvent(ctx, tenantID, eventID)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// Occurrences materializes the concrete occurrence dates of an event
// inside [from, to].  Occurrences are never persisted; recurring events
// are expanded on the fly and one-off events contribute their start
// date when it falls inside the window.
func (s *RegistrationService) Occurrences(ctx context.Context, tenantID, eventID uint64, from, to time.Time) ([]time.Time, error) {
	ev, err := s.GetEvent(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Recurrence == nil {
		start := ev.StartDate.UTC().Truncate(24 * time.Hour)
		if start.Before(from) || start.After(to) {
			return nil, nil
		}
		return []time.Time{start}, nil
	}
	return recurrence.Generate(ev.StartDate, *ev.Recurrence, from, to, maxOccurrencesPerQuery), nil
}

// CapacityStatus derives the capacity snapshot for one occurrence.  It
// fails only when the event does not exist.
func (s *RegistrationService) CapacityStatus(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (*model.CapacityStatus, error) {
	ev, err := s.GetEvent(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	counts, err := s.regs.CountByOccurrence(ctx, tenantID, eventID, normalizeOccurrence(occurrence))
	if err != nil {
		return nil, fmt.Errorf("count occurrence: %w", err)
	}
	st := &model.CapacityStatus{
		Registered: counts.Registered,
		Waitlisted: counts.Waitlisted,
	}
	if ev.Capacity != nil {
		avail := *ev.Capacity - counts.Registered
		if avail < 0 {
			avail = 0
		}
		st.Available = &avail
		st.IsFull = counts.Registered >= *ev.Capacity
	}
	if ev.RegistrationDeadline != nil {
		st.DeadlinePassed = s.now().After(*ev.RegistrationDeadline)
	}
	return st, nil
}

// Create registers an attendee for an occurrence.  Validation order:
// event exists, registration enabled, deadline not passed, no active
// duplicate email, then the capacity decision — all of the latter two
// under the occurrence lock so two racing creates can never both take
// the last slot.  A full occurrence lands on the waitlist when enabled,
// otherwise the create is rejected.
func (s *RegistrationService) Create(ctx context.Context, in CreateInput) (*model.Registration, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateCreate(in, email); err != nil {
		return nil, err
	}

	ev, err := s.GetEvent(ctx, in.TenantID, in.EventID)
	if err != nil {
		return nil, err
	}
	if !ev.RegistrationEnabled {
		return nil, ErrRegistrationNotEnabled
	}
	if ev.RegistrationDeadline != nil && s.now().After(*ev.RegistrationDeadline) {
		return nil, ErrDeadlinePassed
	}

	token, err := utils.NewRegistrationToken()
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	occ := normalizeOccurrence(in.OccurrenceDate)
	reg := &model.Registration{
		TenantID:            in.TenantID,
		EventID:             in.EventID,
		OccurrenceDate:      occ,
		Email:               email,
		FirstName:           strings.TrimSpace(in.FirstName),
		LastName:            strings.TrimSpace(in.LastName),
		Phone:               in.Phone,
		AdditionalAttendees: in.AdditionalAttendees,
		AccessToken:         token,
		ReminderOptIn:       in.ReminderOptIn,
	}

	err = s.regs.InOccurrenceTx(ctx, in.TenantID, in.EventID, func(tx OccurrenceTx) error {
		exists, err := tx.ActiveEmailExists(occ, email)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			return ErrAlreadyRegistered
		}
		// Capacity is re-read here, under the lock; the pre-checks above
		// ran on a stale snapshot by design.
		counts, err := tx.Counts(occ)
		if err != nil {
			return fmt.Errorf("count occurrence: %w", err)
		}
		if ev.Capacity != nil && counts.Registered >= *ev.Capacity {
			if !ev.WaitlistEnabled {
				return ErrCapacityFull
			}
			pos := counts.Waitlisted + 1
			reg.Status = model.StatusWaitlisted
			reg.WaitlistPosition = &pos
		} else {
			reg.Status = model.StatusRegistered
		}
		return tx.Insert(reg)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Cancel cancels a registration.  When accessToken is non-empty it
// must match the stored token; a mismatch is indistinguishable from a
// missing registration.  If the cancelled row held a capacity slot and
// the event runs a waitlist, the lowest-ranked waitlisted row is
// promoted and the remaining ranks are renumbered, all inside the same
// critical section as the cancellation itself.
func (s *RegistrationService) Cancel(ctx context.Context, tenantID, id uint64, accessToken string) (*CancelOutcome, error) {
	current, err := s.getRegistration(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if accessToken != "" && subtle.ConstantTimeCompare([]byte(accessToken), []byte(current.AccessToken)) != 1 {
		return nil, ErrRegistrationNotFound
	}
	ev, err := s.GetEvent(ctx, tenantID, current.EventID)
	if err != nil {
		return nil, err
	}

	out := &CancelOutcome{}
	err = s.regs.InOccurrenceTx(ctx, tenantID, current.EventID, func(tx OccurrenceTx) error {
		reg, err := tx.Get(id)
		if err != nil {
			return translateStoreErr(err)
		}
		if reg.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}
		heldSlot := reg.Status.HoldsSlot()
		wasWaitlisted := reg.Status == model.StatusWaitlisted
		oldPos := reg.WaitlistPosition
		occ := reg.OccurrenceDate

		reg.Status = model.StatusCancelled
		reg.WaitlistPosition = nil
		if err := tx.Update(reg); err != nil {
			return fmt.Errorf("cancel registration: %w", err)
		}
		out.Cancelled = reg

		if wasWaitlisted && oldPos != nil {
			// Close the rank gap left by the departed waitlist row.
			if err := tx.ShiftWaitlistDown(occ, *oldPos); err != nil {
				return fmt.Errorf("renumber waitlist: %w", err)
			}
			return nil
		}
		if !heldSlot || !ev.WaitlistEnabled {
			return nil
		}
		promoted, err := tx.LowestWaitlisted(occ)
		if err != nil {
			return fmt.Errorf("find promotion candidate: %w", err)
		}
		if promoted == nil {
			return nil
		}
		freedPos := *promoted.WaitlistPosition
		promoted.Status = model.StatusRegistered
		promoted.WaitlistPosition = nil
		if err := tx.Update(promoted); err != nil {
			return fmt.Errorf("promote registration: %w", err)
		}
		if err := tx.ShiftWaitlistDown(occ, freedPos); err != nil {
			return fmt.Errorf("renumber waitlist: %w", err)
		}
		out.Promoted = promoted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckIn marks a registered attendee as arrived, recording when and by
// whom.  A second check-in is an explicit error.  Waitlisted rows are
// rejected: they hold no seat and must be promoted first.
func (s *RegistrationService) CheckIn(ctx context.Context, tenantID, id, staffID uint64) (*model.Registration, error) {
	return s.transition(ctx, tenantID, id, func(reg *model.Registration) error {
		switch reg.Status {
		case model.StatusCancelled:
			return ErrAlreadyCancelled
		case model.StatusCheckedIn:
			return ErrAlreadyCheckedIn
		case model.StatusWaitlisted, model.StatusNoShow:
			return ErrNotRegistered
		}
		now := s.now().UTC()
		reg.Status = model.StatusCheckedIn
		reg.CheckedInAt = &now
		reg.CheckedInBy = &staffID
		return nil
	})
}

// UndoCheckIn reverts a checked-in attendee to registered and clears
// the check-in record.
func (s *RegistrationService) UndoCheckIn(ctx context.Context, tenantID, id uint64) (*model.Registration, error) {
	return s.transition(ctx, tenantID, id, func(reg *model.Registration) error {
		if reg.Status != model.StatusCheckedIn {
			return ErrNotCheckedIn
		}
		reg.Status = model.StatusRegistered
		reg.CheckedInAt = nil
		reg.CheckedInBy = nil
		return nil
	})
}

// MarkNoShow flags a registered attendee who never arrived.  Terminal;
// checked-in attendees cannot become no-shows, and the freed intent
// does not trigger waitlist promotion (no-shows are marked after the
// event, when promotion would be meaningless).
func (s *RegistrationService) MarkNoShow(ctx context.Context, tenantID, id uint64) (*model.Registration, error) {
	return s.transition(ctx, tenantID, id, func(reg *model.Registration) error {
		switch reg.Status {
		case model.StatusCancelled:
			return ErrAlreadyCancelled
		case model.StatusRegistered:
		default:
			return ErrNotRegistered
		}
		reg.Status = model.StatusNoShow
		return nil
	})
}

// GetByToken resolves an access token to its registration and a
// minimal event projection.  The token is the sole credential; there
// is no secondary check.
func (s *RegistrationService) GetByToken(ctx context.Context, tenantID uint64, token string) (*model.Registration, *model.EventSummary, error) {
	if token == "" {
		return nil, nil, ErrRegistrationNotFound
	}
	reg, ev, err := s.regs.GetByAccessToken(ctx, tenantID, token)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, nil, ErrRegistrationNotFound
		}
		return nil, nil, fmt.Errorf("lookup by token: %w", err)
	}
	return reg, ev, nil
}

// Stats aggregates an occurrence's registrations by status.
func (s *RegistrationService) Stats(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.RegistrationStats, error) {
	if _, err := s.GetEvent(ctx, tenantID, eventID); err != nil {
		return model.RegistrationStats{}, err
	}
	stats, err := s.regs.StatsByOccurrence(ctx, tenantID, eventID, normalizeOccurrence(occurrence))
	if err != nil {
		return model.RegistrationStats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	return stats, nil
}

// transition applies a status mutation inside the occurrence critical
// section, re-reading the row under the lock before deciding.
func (s *RegistrationService) transition(ctx context.Context, tenantID, id uint64, mutate func(*model.Registration) error) (*model.Registration, error) {
	current, err := s.getRegistration(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	var updated *model.Registration
	err = s.regs.InOccurrenceTx(ctx, tenantID, current.EventID, func(tx OccurrenceTx) error {
		reg, err := tx.Get(id)
		if err != nil {
			return translateStoreErr(err)
		}
		if err := mutate(reg); err != nil {
			return err
		}
		if err := tx.Update(reg); err != nil {
			return fmt.Errorf("update registration: %w", err)
		}
		updated = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RegistrationService) getRegistration(ctx context.Context, tenantID, id uint64) (*model.Registration, error) {
	reg, err := s.regs.GetRegistration(ctx, tenantID, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return reg, nil
}

func translateStoreErr(err error) error {
	if errors.Is(err, ErrStoreNotFound) {
		return ErrRegistrationNotFound
	}
	return fmt.Errorf("registration store: %w", err)
}

func validateCreate(in CreateInput, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalidInput)
	}
	if in.AdditionalAttendees < 0 {
		return fmt.Errorf("%w: additional attendees cannot be negative", ErrInvalidInput)
	}
	return nil
}

// isValidEmail does a basic structural check; deliverability is the
// notification layer's problem.
func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// normalizeOccurrence truncates an occurrence to its UTC date so every
// layer keys occurrences identically.
func normalizeOccurrence(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &day
}
