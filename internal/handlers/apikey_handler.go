package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type APIKeyHandler struct {
	authService *services.AuthService
}

func NewAPIKeyHandler(authService *services.AuthService) *APIKeyHandler {
	return &APIKeyHandler{authService: authService}
}

// List returns the API keys of the caller's client.
func (h *APIKeyHandler) List(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	keys, err := h.authService.APIKeysForAccount(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Account not found",
			})
		}
		return internalError(c)
	}

	resp := make([]dto.APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, dto.APIKeyResponse{
			ID:        k.ID,
			Key:       k.Key,
			Label:     k.Label,
			CreatedAt: k.CreatedAt,
		})
	}
	return c.JSON(resp)
}
