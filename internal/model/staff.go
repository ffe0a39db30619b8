package model

import "time"

// StaffAccount represents a member of staff who can operate the
// check-in desk for a tenant.  Passwords are stored as bcrypt hashes.
//
// Fields:
//  ID           – primary key identifier.
//  TenantID     – tenant the account belongs to.
//  Email        – login email, unique per tenant.
//  PasswordHash – bcrypt hashed password.
//  Role         – STAFF or ADMIN.
//  CreatedAt    – creation timestamp.
type StaffAccount struct {
	ID           uint64    // staff_accounts.id
	TenantID     uint64    // staff_accounts.tenant_id
	Email        string    // staff_accounts.email
	PasswordHash string    // staff_accounts.password_hash
	Role         string    // staff_accounts.role
	CreatedAt    time.Time // staff_accounts.created_at
}
