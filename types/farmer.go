package types

import "time"

// Role partitions farmers into cooperative administrators and members.
// Administrators are excluded from every report.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleFarmer Role = "farmer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFarmer
}

// Farmer represents a cooperative member account.
// It contains identity, contact details, credentials and role.
type Farmer struct {
	// ID is the unique identifier of the farmer.
	ID int `json:"id" db:"farmer_id"`

	// FullName is the farmer's full name as shown in reports.
	FullName string `json:"full_name" db:"full_name"`

	// Address is the postal address of the farm.
	Address string `json:"address" db:"address"`

	// Phone is the contact phone number.
	Phone string `json:"phone" db:"phone"`

	// Login is the unique name used to sign in.
	Login string `json:"login" db:"login"`

	// PasswordHash stores the hex SHA-256 digest of the password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Email is the farmer's email address.
	Email string `json:"email" db:"email"`

	// RegisteredAt is the timestamp when the account was created.
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`

	// Role indicates whether the account is an administrator or a farmer.
	Role Role `json:"role" db:"role"`
}
