package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// List is the admin account listing.
func (h *AccountHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	accounts, err := h.accountService.List(c.Context(), limit, offset)
	if err != nil {
		return internalError(c)
	}

	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(resp)
}

// SetRole changes an account's role (admin only).
func (h *AccountHandler) SetRole(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid account id")
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.accountService.SetRole(c.Context(), accountID, req.Role); err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			return badRequest(c, err.Error())
		}
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Account not found",
			})
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Role updated"})
}
