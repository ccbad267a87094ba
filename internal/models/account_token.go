package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind distinguishes the three token lifecycles sharing one table.
type TokenKind string

const (
	TokenConfirmation TokenKind = "confirmation"
	TokenRecovery     TokenKind = "recovery"
	TokenRemember     TokenKind = "remember"
)

// SingleUse reports whether a successful verification consumes the token.
// Remember tokens stay usable until expiry or explicit revocation.
func (k TokenKind) SingleUse() bool {
	return k != TokenRemember
}

// AccountToken stores only the sha256 of the transport token. The
// plaintext exists once, at issuance, and is handed straight to the
// delivery collaborator. A token is live while ConsumedAt is null and
// ExpiresAt is in the future; the partial unique index on live
// (account, kind) rows guarantees at most one live token per kind even
// when issuers race.
type AccountToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_account_tokens_account_kind;uniqueIndex:idx_account_tokens_live,where:consumed_at IS NULL" json:"account_id"`
	Kind       TokenKind  `gorm:"size:20;not null;index:idx_account_tokens_account_kind;uniqueIndex:idx_account_tokens_live,where:consumed_at IS NULL" json:"kind"`
	TokenHash  string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Live reports whether the token is still presentable at the given time.
func (t *AccountToken) Live(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
