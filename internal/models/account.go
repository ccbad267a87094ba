package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleVIP   Role = "vip"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVIP, RoleAdmin:
		return true
	}
	return false
}

// Account is an authenticable identity belonging to an external Client.
// PasswordHash and token hashes are opaque; plaintext credentials are
// never persisted. The sign-in tracking fields are informational only
// and never feed authorization decisions.
type Account struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Email        string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"size:20;not null" json:"role"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`

	SignInCount     int        `gorm:"not null;default:0" json:"sign_in_count"`
	CurrentSignInAt *time.Time `json:"-"`
	LastSignInAt    *time.Time `json:"-"`
	CurrentSignInIP string     `gorm:"size:45" json:"-"`
	LastSignInIP    string     `gorm:"size:45" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NewAccount builds an unconfirmed account with its invariants applied:
// id assigned, email normalized, role defaulted to user when unset.
func NewAccount(email string, clientID uuid.UUID) Account {
	return Account{
		ID:       uuid.New(),
		ClientID: clientID,
		Email:    NormalizeEmail(email),
		Role:     RoleUser,
	}
}

// NormalizeEmail is the canonical form used for uniqueness and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Account) Confirmed() bool {
	return a.ConfirmedAt != nil
}
