package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewAccountDefaults(t *testing.T) {
	clientID := uuid.New()
	account := NewAccount(" Alice@Example.COM ", clientID)

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, clientID, account.ClientID)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, RoleUser, account.Role)
	assert.Nil(t, account.ConfirmedAt)
	assert.False(t, account.Confirmed())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleVIP.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("superuser").Valid())
}

func TestTokenKindSingleUse(t *testing.T) {
	assert.True(t, TokenConfirmation.SingleUse())
	assert.True(t, TokenRecovery.SingleUse())
	assert.False(t, TokenRemember.SingleUse())
}

func TestAccountTokenLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	consumed := now.Add(-time.Minute)

	token := AccountToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, token.Live(now))

	token.ConsumedAt = &consumed
	assert.False(t, token.Live(now))

	token.ConsumedAt = nil
	assert.False(t, token.Live(now.Add(2*time.Hour)))
}
