package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/support-hub/support-hub/internal/api/dto"
	"github.com/support-hub/support-hub/internal/auth"
	apperrors "github.com/support-hub/support-hub/pkg/util"
)

// AuthHandler issues role-scoped access tokens.
type AuthHandler struct {
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Sub) == "" || strings.TrimSpace(req.Role) == "" {
		return apperrors.NewValidationError("sub and role required", nil)
	}

	role := auth.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if _, ok := auth.ValidRoles[role]; !ok {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": req.Role})
	}

	token, _, err := h.tokens.GenerateToken(strings.TrimSpace(req.Sub), role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}
