package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login accepts the OAuth2 password form as well as a JSON body.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.Me(middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// BootstrapAdmin creates the first super-admin. It only succeeds on a store
// that has none.
func (h *AuthHandler) BootstrapAdmin(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.BootstrapAdmin(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.PasswordChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.ChangePassword(middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}
	var req dto.PasswordResetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.ResetPassword(userID, &req)
	if err != nil {
		return err
	}
	slog.Info("password reset", "user_id", userID, "reset_by", middleware.Actor(c).ID)
	return c.JSON(user)
}
