package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-helpdesk/internal/api/dto"
	"github.com/spec-kit/facility-helpdesk/internal/auth"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

// AuthHandler issues staff tokens against the directory.
type AuthHandler struct {
	tokens *auth.TokenManager
	staff  repository.StaffRepository
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(tokens *auth.TokenManager, staff repository.StaffRepository) *AuthHandler {
	return &AuthHandler{tokens: tokens, staff: staff}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.Password == "" {
		return apperrors.NewValidationError("name and password required", nil)
	}

	member, err := h.staff.GetByName(c.UserContext(), req.Name)
	if err != nil {
		return apperrors.MapError(err)
	}
	if member == nil || !member.Active || member.PasswordHash == "" {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(member.PasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(member.Name, member.Role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.Success("authenticated", dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      string(member.Role),
	}))
}
