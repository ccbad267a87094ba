package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidRole = errors.New("unknown role")

// AccountService covers the administrative account operations that sit
// outside the authentication flows.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// List returns accounts ordered by creation time, newest first.
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]models.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// SetRole replaces the account's role with another member of the
// closed enumeration.
func (s *AccountService) SetRole(ctx context.Context, accountID uuid.UUID, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to update role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
