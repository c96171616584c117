package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// ProfileHandler exposes the caller's own account endpoints.
type ProfileHandler struct {
	service *service.AuthService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{service: authService}
}

// UpdateProfile PUT /api/profile.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	authCtx := auth.ContextFrom(c)
	if !authCtx.Authenticated {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name and email required", nil)
	}

	user, err := h.service.UpdateProfile(c.UserContext(), authCtx.Subject, req.Name, req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// ChangePassword POST /api/profile/password.
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	authCtx := auth.ContextFrom(c)
	if !authCtx.Authenticated {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password and new_password required", nil)
	}

	if err := h.service.ChangePassword(c.UserContext(), authCtx.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

// UpdateAvatar PUT /api/profile/avatar.
func (h *ProfileHandler) UpdateAvatar(c *fiber.Ctx) error {
	authCtx := auth.ContextFrom(c)
	if !authCtx.Authenticated {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AvatarUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.PictureURL) == "" {
		return apperrors.NewValidationError("picture_url required", nil)
	}

	user, err := h.service.UpdateAvatar(c.UserContext(), authCtx.Subject, req.PictureURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// DeleteAvatar DELETE /api/profile/avatar. Resets the picture to the
// generated default.
func (h *ProfileHandler) DeleteAvatar(c *fiber.Ctx) error {
	authCtx := auth.ContextFrom(c)
	if !authCtx.Authenticated {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.service.DeleteAvatar(c.UserContext(), authCtx.Subject)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}
