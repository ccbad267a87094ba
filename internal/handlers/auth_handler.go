package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	account, err := h.authService.Register(c.Context(), req.Email, req.Password, req.ClientID)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrWeakPassword) || errors.Is(err, services.ErrInvalidEmail) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewAccountResponse(account))
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.authService.SignIn(c.Context(), req.Email, req.Password, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrRejected) {
			return unauthorized(c, err.Error())
		}
		if errors.Is(err, services.ErrUnconfirmed) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c)
	}

	resp := dto.AuthResponse{
		AccessToken: result.AccessToken,
		Account:     dto.NewAccountResponse(result.Account),
	}

	if req.RememberMe {
		remember, err := h.authService.IssueRememberToken(c.Context(), result.Account.ID)
		if err != nil {
			return internalError(c)
		}
		resp.RememberToken = remember
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Confirm(c *fiber.Ctx) error {
	var req dto.ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.Confirm(c.Context(), req.AccountID, req.Token); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return unauthorized(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Account confirmed"})
}

func (h *AuthHandler) ResendConfirmation(c *fiber.Ctx) error {
	var req dto.ResendConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.ResendConfirmation(c.Context(), req.Email); err != nil {
		return internalError(c)
	}

	// Identical response whether or not the email exists.
	return c.JSON(fiber.Map{"message": "If the email is registered and unconfirmed, confirmation instructions were sent"})
}

func (h *AuthHandler) RequestRecovery(c *fiber.Ctx) error {
	var req dto.RecoveryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.RequestRecovery(c.Context(), req.Email); err != nil {
		return internalError(c)
	}

	// Identical response whether or not the email exists.
	return c.JSON(fiber.Map{"message": "If the email is registered, recovery instructions were sent"})
}

func (h *AuthHandler) CompleteRecovery(c *fiber.Ctx) error {
	var req dto.CompleteRecoveryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.CompleteRecovery(c.Context(), req.AccountID, req.Token, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return unauthorized(c, err.Error())
		}
		if errors.Is(err, services.ErrWeakPassword) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *AuthHandler) RememberSignIn(c *fiber.Ctx) error {
	var req dto.RememberSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.authService.SignInWithRememberToken(c.Context(), req.Token, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrRejected) {
			return unauthorized(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(dto.AuthResponse{
		AccessToken: result.AccessToken,
		Account:     dto.NewAccountResponse(result.Account),
	})
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	if err := h.authService.SignOut(c.Context(), accountID); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Signed out"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.DeleteAccount(c.Context(), accountID, req.Password); err != nil {
		if errors.Is(err, services.ErrRejected) {
			return unauthorized(c, "Incorrect password. Please try again.")
		}
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Account not found",
			})
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// currentAccountID extracts the account UUID from JWT claims in context.
func currentAccountID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
