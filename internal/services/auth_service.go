package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/credentials"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidEmail    = errors.New("a valid email address is required")
	ErrRejected        = errors.New("invalid email or password")
	ErrUnconfirmed     = errors.New("account is not confirmed")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrAccountNotFound = errors.New("account not found")
)

// ErrWeakPassword is re-exported so handlers match on one package.
var ErrWeakPassword = credentials.ErrWeakPassword

// bcrypt hash of an arbitrary string, compared against when the email
// is unknown so the miss costs as much as a real password check.
const decoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZFWXegQDCjh18aPdwEWeGFUB1y1T2"

// Delivery hands a freshly issued token to an out-of-band channel.
// Formatting and retries belong to the implementation, not this core.
type Delivery interface {
	Deliver(ctx context.Context, accountID uuid.UUID, kind models.TokenKind, plaintext string) error
}

// SignInResult is a successful authentication: the account plus a
// short-lived JWT access token.
type SignInResult struct {
	Account     *models.Account
	AccessToken string
}

// AuthService orchestrates registration, sign-in, confirmation,
// recovery, and persistent sign-in over the credential and token
// services. The backing database is the single source of truth; no
// hashes are cached across calls.
type AuthService struct {
	db          *gorm.DB
	cfg         *config.Config
	credentials *credentials.Store
	tokens      *tokens.Service
	delivery    Delivery
	now         func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, creds *credentials.Store, tok *tokens.Service, delivery Delivery) *AuthService {
	return &AuthService{
		db:          db,
		cfg:         cfg,
		credentials: creds,
		tokens:      tok,
		delivery:    delivery,
		now:         time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates an unconfirmed account with role user and issues a
// confirmation token for out-of-band delivery. It never authenticates
// the caller.
func (s *AuthService) Register(ctx context.Context, email, password string, clientID uuid.UUID) (*models.Account, error) {
	normalized := models.NormalizeEmail(email)
	if normalized == "" || !strings.Contains(normalized, "@") {
		return nil, ErrInvalidEmail
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	var existing models.Account
	if err := s.db.WithContext(ctx).Where("email = ?", normalized).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	account := models.NewAccount(normalized, clientID)
	account.PasswordHash = hash

	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.issueAndDeliver(ctx, account.ID, models.TokenConfirmation); err != nil {
		return nil, err
	}

	return &account, nil
}

// SignIn verifies credentials and, on success, updates the trackable
// metadata and mints an access token. Unknown emails and bad passwords
// are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password, ip string) (*SignInResult, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn the same hashing cost as a real check.
			s.credentials.Verify(password, decoyHash)
			return nil, ErrRejected
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.credentials.Verify(password, account.PasswordHash) {
		return nil, ErrRejected
	}

	if !account.Confirmed() && !s.cfg.AllowUnconfirmedSignIn {
		return nil, ErrUnconfirmed
	}

	if err := s.trackSignIn(ctx, &account, ip); err != nil {
		return nil, err
	}

	accessToken, err := s.generateAccessToken(&account)
	if err != nil {
		return nil, err
	}

	return &SignInResult{Account: &account, AccessToken: accessToken}, nil
}

// Confirm consumes the confirmation token and marks the account
// confirmed. All token failure modes collapse to ErrInvalidToken.
func (s *AuthService) Confirm(ctx context.Context, accountID uuid.UUID, presented string) error {
	status, err := s.tokens.Verify(ctx, accountID, models.TokenConfirmation, presented)
	if err != nil {
		return err
	}
	if status != tokens.StatusValid {
		return ErrInvalidToken
	}

	err = s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("confirmed_at", s.now()).Error
	if err != nil {
		return fmt.Errorf("failed to confirm account: %w", err)
	}
	return nil
}

// ResendConfirmation issues a fresh confirmation token when the email
// belongs to an unconfirmed account, replacing any earlier one that
// was lost in transit. Unknown and already-confirmed emails report
// success too, so callers cannot probe for accounts or their state.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if account.Confirmed() {
		return nil
	}

	return s.issueAndDeliver(ctx, account.ID, models.TokenConfirmation)
}

// RequestRecovery issues a recovery token when the email is known and
// reports success either way, so callers cannot enumerate accounts.
func (s *AuthService) RequestRecovery(ctx context.Context, email string) error {
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	return s.issueAndDeliver(ctx, account.ID, models.TokenRecovery)
}

// CompleteRecovery consumes the recovery token, replaces the password
// hash, and revokes every remember token so stolen persistent sessions
// die with the old password. The policy check runs before the token is
// consumed; a weak replacement must not burn the token.
func (s *AuthService) CompleteRecovery(ctx context.Context, accountID uuid.UUID, presented, newPassword string) error {
	hash, err := s.credentials.Hash(newPassword)
	if err != nil {
		return err
	}

	status, err := s.tokens.Verify(ctx, accountID, models.TokenRecovery, presented)
	if err != nil {
		return err
	}
	if status != tokens.StatusValid {
		return ErrInvalidToken
	}

	err = s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("password_hash", hash).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return s.tokens.Revoke(ctx, accountID, models.TokenRemember)
}

// IssueRememberToken returns the transport form of a fresh remember
// token; any prior one for the account stops working.
func (s *AuthService) IssueRememberToken(ctx context.Context, accountID uuid.UUID) (string, error) {
	plaintext, _, err := s.tokens.Issue(ctx, accountID, models.TokenRemember)
	return plaintext, err
}

// SignInWithRememberToken authenticates from a persistent sign-in
// token. The token stays live; all failures are a uniform ErrRejected.
func (s *AuthService) SignInWithRememberToken(ctx context.Context, presented, ip string) (*SignInResult, error) {
	token, status, err := s.tokens.Lookup(ctx, models.TokenRemember, presented)
	if err != nil {
		return nil, err
	}
	if status != tokens.StatusValid {
		return nil, ErrRejected
	}

	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", token.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRejected
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.trackSignIn(ctx, &account, ip); err != nil {
		return nil, err
	}

	accessToken, err := s.generateAccessToken(&account)
	if err != nil {
		return nil, err
	}

	return &SignInResult{Account: &account, AccessToken: accessToken}, nil
}

// SignOut revokes the account's remember token.
func (s *AuthService) SignOut(ctx context.Context, accountID uuid.UUID) error {
	return s.tokens.Revoke(ctx, accountID, models.TokenRemember)
}

// DeleteAccount removes the account after a password re-check and
// invalidates every outstanding token in the same transaction.
func (s *AuthService) DeleteAccount(ctx context.Context, accountID uuid.UUID, password string) error {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.credentials.Verify(password, account.PasswordHash) {
		return ErrRejected
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&models.AccountToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
}

// APIKeysForAccount returns the API keys of the account's client, the
// derived read-only view. This service never writes to clients or keys.
func (s *AuthService) APIKeysForAccount(ctx context.Context, accountID uuid.UUID) ([]models.APIKey, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	var keys []models.APIKey
	err := s.db.WithContext(ctx).
		Where("client_id = ?", account.ClientID).
		Order("created_at").
		Find(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}
	return keys, nil
}

func (s *AuthService) issueAndDeliver(ctx context.Context, accountID uuid.UUID, kind models.TokenKind) error {
	plaintext, _, err := s.tokens.Issue(ctx, accountID, kind)
	if err != nil {
		return err
	}
	if err := s.delivery.Deliver(ctx, accountID, kind, plaintext); err != nil {
		// Delivery retries are the collaborator's problem. The token
		// stays live; the account can request another.
		slog.Error("token delivery failed", "account_id", accountID, "kind", kind, "error", err)
	}
	return nil
}

// trackSignIn shifts current_* into last_* and bumps the counter in a
// single conditional update.
func (s *AuthService) trackSignIn(ctx context.Context, account *models.Account, ip string) error {
	now := s.now()
	err := s.db.WithContext(ctx).Model(account).Updates(map[string]interface{}{
		"sign_in_count":      gorm.Expr("sign_in_count + 1"),
		"last_sign_in_at":    account.CurrentSignInAt,
		"last_sign_in_ip":    account.CurrentSignInIP,
		"current_sign_in_at": now,
		"current_sign_in_ip": ip,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	account.LastSignInAt = account.CurrentSignInAt
	account.LastSignInIP = account.CurrentSignInIP
	account.CurrentSignInAt = &now
	account.CurrentSignInIP = ip
	account.SignInCount++
	return nil
}

func (s *AuthService) generateAccessToken(account *models.Account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   account.ID.String(),
		"email": account.Email,
		"role":  string(account.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
