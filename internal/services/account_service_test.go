package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.db)
	account := f.register(t, "a@x.com")

	require.NoError(t, svc.SetRole(context.Background(), account.ID, models.RoleVIP))

	var stored models.Account
	require.NoError(t, f.db.First(&stored, "id = ?", account.ID).Error)
	assert.Equal(t, models.RoleVIP, stored.Role)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.db)
	account := f.register(t, "a@x.com")

	err := svc.SetRole(context.Background(), account.ID, models.Role("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSetRoleMissingAccount(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.db)

	err := svc.SetRole(context.Background(), uuid.New(), models.RoleAdmin)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.db)

	f.register(t, "a@x.com")
	f.register(t, "b@x.com")

	accounts, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	accounts, err = svc.List(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
