package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is an application role held through a user_roles row
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RolePharmacist Role = "pharmacist"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RolePharmacist:
		return true
	default:
		return false
	}
}

// User is a registered storefront account
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	PharmacyName string    `json:"pharmacyName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRole is a single (user, role) assignment
type UserRole struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RefreshToken is a long-lived session token
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}
