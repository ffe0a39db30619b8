package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openmeadow/eventreg/internal/model"
	"github.com/openmeadow/eventreg/internal/service"
)

// StaffRepository provides lookups for staff accounts used by the
// check-in desk login.
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository returns a StaffRepository bound to the database.
func NewStaffRepository(db *sql.DB) *StaffRepository { return &StaffRepository{db: db} }

// GetByEmail returns the staff account for a tenant and login email,
// or service.ErrStoreNotFound.
func (r *StaffRepository) GetByEmail(ctx context.Context, tenantID uint64, email string) (*model.StaffAccount, error) {
	const q = `SELECT id, tenant_id, email, password_hash, role, created_at
	           FROM staff_accounts
	           WHERE tenant_id = ? AND email = ?`
	var acc model.StaffAccount
	err := r.db.QueryRowContext(ctx, q, tenantID, email).Scan(
		&acc.ID, &acc.TenantID, &acc.Email, &acc.PasswordHash, &acc.Role, &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrStoreNotFound
		}
		return nil, fmt.Errorf("get staff account: %w", err)
	}
	return &acc, nil
}
