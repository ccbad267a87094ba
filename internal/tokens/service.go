// Package tokens manages the lifecycle of confirmation, recovery, and
// remember tokens: issue, verify (consuming single-use kinds), and
// revoke. Only sha256 hashes are stored; the transport form is
// returned exactly once at issuance.
package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the internal outcome of a verification. Callers collapse
// everything but StatusValid into a single opaque invalid-token error
// so the API never reveals which check failed.
type Status int

const (
	StatusValid Status = iota
	StatusExpired
	StatusNotFound
	StatusMismatch
)

type Service struct {
	db  *gorm.DB
	ttl map[models.TokenKind]time.Duration
	now func() time.Time
}

func NewService(db *gorm.DB, confirmationTTL, recoveryTTL, rememberTTL time.Duration) *Service {
	return &Service{
		db: db,
		ttl: map[models.TokenKind]time.Duration{
			models.TokenConfirmation: confirmationTTL,
			models.TokenRecovery:     recoveryTTL,
			models.TokenRemember:     rememberTTL,
		},
		now: time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue generates a 256-bit random token, stores its hash with the
// kind's TTL, and returns the transport form. Any prior live token of
// the same kind is consumed in the same transaction, and the partial
// unique index on live (account, kind) rows rejects a racing insert
// that slipped past the consume, so at most one live token per
// (account, kind) can ever commit. Losing that race surfaces as an
// error; the caller simply retries.
func (s *Service) Issue(ctx context.Context, accountID uuid.UUID, kind models.TokenKind) (string, *models.AccountToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	plaintext := base64.URLEncoding.EncodeToString(raw)

	now := s.now()
	record := &models.AccountToken{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		TokenHash: HashToken(plaintext),
		ExpiresAt: now.Add(s.ttl[kind]),
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AccountToken{}).
			Where("account_id = ? AND kind = ? AND consumed_at IS NULL", accountID, kind).
			Update("consumed_at", now).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to store %s token: %w", kind, err)
	}

	return plaintext, record, nil
}

// Verify checks the presented token against the live token for the
// (account, kind) pair. For single-use kinds a StatusValid result
// consumes the token atomically; losing the consume race to a
// concurrent verify downgrades the result to StatusNotFound, so a
// token is accepted at most once.
func (s *Service) Verify(ctx context.Context, accountID uuid.UUID, kind models.TokenKind, presented string) (Status, error) {
	var live []models.AccountToken
	if err := s.db.WithContext(ctx).
		Where("account_id = ? AND kind = ? AND consumed_at IS NULL", accountID, kind).
		Find(&live).Error; err != nil {
		return StatusNotFound, fmt.Errorf("failed to load %s token: %w", kind, err)
	}
	if len(live) == 0 {
		return StatusNotFound, nil
	}
	if len(live) > 1 {
		// The partial unique index makes this unreachable; fail closed
		// if the store lost it.
		slog.Error("invariant violation: multiple live tokens",
			"account_id", accountID, "kind", kind, "count", len(live))
		return StatusNotFound, nil
	}

	token := live[0]
	if subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(HashToken(presented))) != 1 {
		return StatusMismatch, nil
	}

	now := s.now()
	if !now.Before(token.ExpiresAt) {
		return StatusExpired, nil
	}

	if kind.SingleUse() {
		res := s.db.WithContext(ctx).Model(&models.AccountToken{}).
			Where("id = ? AND consumed_at IS NULL", token.ID).
			Update("consumed_at", now)
		if res.Error != nil {
			return StatusNotFound, fmt.Errorf("failed to consume %s token: %w", kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return StatusNotFound, nil
		}
	}

	return StatusValid, nil
}

// Lookup resolves a remember-style token by its transport form alone,
// for flows where the caller does not yet know the account (e.g. a
// persistent sign-in cookie). The token is not consumed.
func (s *Service) Lookup(ctx context.Context, kind models.TokenKind, presented string) (*models.AccountToken, Status, error) {
	var token models.AccountToken
	err := s.db.WithContext(ctx).
		Where("kind = ? AND token_hash = ? AND consumed_at IS NULL", kind, HashToken(presented)).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, StatusNotFound, nil
	}
	if err != nil {
		return nil, StatusNotFound, fmt.Errorf("failed to look up %s token: %w", kind, err)
	}
	if !s.now().Before(token.ExpiresAt) {
		return nil, StatusExpired, nil
	}
	return &token, StatusValid, nil
}

// Revoke consumes any live token of the given kind for the account.
func (s *Service) Revoke(ctx context.Context, accountID uuid.UUID, kind models.TokenKind) error {
	err := s.db.WithContext(ctx).Model(&models.AccountToken{}).
		Where("account_id = ? AND kind = ? AND consumed_at IS NULL", accountID, kind).
		Update("consumed_at", s.now()).Error
	if err != nil {
		return fmt.Errorf("failed to revoke %s token: %w", kind, err)
	}
	return nil
}

// RevokeAll consumes every live token for the account, regardless of
// kind. Used on password change and account deletion.
func (s *Service) RevokeAll(ctx context.Context, accountID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.AccountToken{}).
		Where("account_id = ? AND consumed_at IS NULL", accountID).
		Update("consumed_at", s.now()).Error
	if err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// HashToken is the at-rest form of a transport token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
