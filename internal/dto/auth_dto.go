package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	ClientID uuid.UUID `json:"client_id"`
}

type SignInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type ConfirmRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Token     string    `json:"token"`
}

type ResendConfirmationRequest struct {
	Email string `json:"email"`
}

type RecoveryRequest struct {
	Email string `json:"email"`
}

type CompleteRecoveryRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Token     string    `json:"token"`
	Password  string    `json:"password"`
}

type RememberSignInRequest struct {
	Token string `json:"token"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken   string          `json:"access_token"`
	RememberToken string          `json:"remember_token,omitempty"`
	Account       AccountResponse `json:"account"`
}

type AccountResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	ConfirmedAt *time.Time  `json:"confirmed_at"`
}

func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		Role:        a.Role,
		ConfirmedAt: a.ConfirmedAt,
	}
}

type APIKeyResponse struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
