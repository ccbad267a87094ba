package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AccountToken{}))
	return db
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time          { return c.current }
func (c *testClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(newTestDB(t), 72*time.Hour, 6*time.Hour, 336*time.Hour).WithClock(clock.Now)
	return svc, clock
}

func TestIssueAndVerify(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	plaintext, record, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)
	assert.NotEmpty(t, plaintext)
	assert.NotEqual(t, plaintext, record.TokenHash)
	assert.Equal(t, HashToken(plaintext), record.TokenHash)

	status, err := svc.Verify(context.Background(), accountID, models.TokenConfirmation, plaintext)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, status)
}

func TestSingleUseConsumedOnVerify(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	plaintext, _, err := svc.Issue(context.Background(), accountID, models.TokenRecovery)
	require.NoError(t, err)

	status, err := svc.Verify(context.Background(), accountID, models.TokenRecovery, plaintext)
	require.NoError(t, err)
	require.Equal(t, StatusValid, status)

	// Re-presentation is rejected, never re-accepted.
	for i := 0; i < 3; i++ {
		status, err = svc.Verify(context.Background(), accountID, models.TokenRecovery, plaintext)
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, status)
	}
}

func TestReissueInvalidatesPrior(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	first, _, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)
	second, _, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)

	status, err := svc.Verify(context.Background(), accountID, models.TokenConfirmation, first)
	require.NoError(t, err)
	assert.Equal(t, StatusMismatch, status)

	status, err = svc.Verify(context.Background(), accountID, models.TokenConfirmation, second)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, status)
}

func TestVerifyExpired(t *testing.T) {
	svc, clock := newTestService(t)
	accountID := uuid.New()

	plaintext, _, err := svc.Issue(context.Background(), accountID, models.TokenRecovery)
	require.NoError(t, err)

	clock.Advance(6*time.Hour + time.Minute)

	status, err := svc.Verify(context.Background(), accountID, models.TokenRecovery, plaintext)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, status)
}

func TestVerifyWrongToken(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	_, _, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)

	status, err := svc.Verify(context.Background(), accountID, models.TokenConfirmation, "forged")
	require.NoError(t, err)
	assert.Equal(t, StatusMismatch, status)

	status, err = svc.Verify(context.Background(), uuid.New(), models.TokenConfirmation, "forged")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)
}

func TestRememberTokenIsMultiUse(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	plaintext, _, err := svc.Issue(context.Background(), accountID, models.TokenRemember)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		status, err := svc.Verify(context.Background(), accountID, models.TokenRemember, plaintext)
		require.NoError(t, err)
		assert.Equal(t, StatusValid, status)
	}

	token, status, err := svc.Lookup(context.Background(), models.TokenRemember, plaintext)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, status)
	assert.Equal(t, accountID, token.AccountID)
}

func TestRevoke(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	plaintext, _, err := svc.Issue(context.Background(), accountID, models.TokenRemember)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), accountID, models.TokenRemember))

	status, err := svc.Verify(context.Background(), accountID, models.TokenRemember, plaintext)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)

	_, status, err = svc.Lookup(context.Background(), models.TokenRemember, plaintext)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)
}

func TestRevokeAll(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	confirmation, _, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)
	remember, _, err := svc.Issue(context.Background(), accountID, models.TokenRemember)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(context.Background(), accountID))

	status, err := svc.Verify(context.Background(), accountID, models.TokenConfirmation, confirmation)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)

	status, err = svc.Verify(context.Background(), accountID, models.TokenRemember, remember)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)
}

func TestLookupExpired(t *testing.T) {
	svc, clock := newTestService(t)
	accountID := uuid.New()

	plaintext, _, err := svc.Issue(context.Background(), accountID, models.TokenRemember)
	require.NoError(t, err)

	clock.Advance(337 * time.Hour)

	_, status, err := svc.Lookup(context.Background(), models.TokenRemember, plaintext)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, status)
}

func TestLiveTokenUniquenessEnforcedByStore(t *testing.T) {
	db := newTestDB(t)
	clock := &testClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(db, 72*time.Hour, 6*time.Hour, 336*time.Hour).WithClock(clock.Now)
	accountID := uuid.New()

	_, record, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)

	// A second live row for the same (account, kind) must be rejected
	// by the store itself, not just by Issue's consume step.
	dup := models.AccountToken{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      models.TokenConfirmation,
		TokenHash: HashToken("racing-issuer"),
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}
	err = db.Create(&dup).Error
	require.Error(t, err)

	// Consumed rows are outside the index; reissue still works.
	_, _, err = svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)
}

func TestVerifyFailsClosedOnDuplicateLiveTokens(t *testing.T) {
	db := newTestDB(t)
	clock := &testClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(db, 72*time.Hour, 6*time.Hour, 336*time.Hour).WithClock(clock.Now)
	accountID := uuid.New()

	// Simulate a store that lost the uniqueness guard.
	require.NoError(t, db.Exec("DROP INDEX idx_account_tokens_live").Error)

	expires := clock.Now().Add(time.Hour)
	for _, raw := range []string{"first", "second"} {
		token := models.AccountToken{
			ID:        uuid.New(),
			AccountID: accountID,
			Kind:      models.TokenRecovery,
			TokenHash: HashToken(raw),
			ExpiresAt: expires,
			CreatedAt: clock.Now(),
		}
		require.NoError(t, db.Create(&token).Error)
	}

	status, err := svc.Verify(context.Background(), accountID, models.TokenRecovery, "first")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)
}

func TestKindsAreIsolated(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := uuid.New()

	confirmation, _, err := svc.Issue(context.Background(), accountID, models.TokenConfirmation)
	require.NoError(t, err)

	// A recovery issue must not touch the confirmation token.
	_, _, err = svc.Issue(context.Background(), accountID, models.TokenRecovery)
	require.NoError(t, err)

	status, err := svc.Verify(context.Background(), accountID, models.TokenConfirmation, confirmation)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, status)
}
