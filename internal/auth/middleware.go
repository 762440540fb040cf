package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/support-hub/support-hub/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the external id from the
// token subject and its role claim.
type Principal struct {
	ExternalID string
	Role       Role
}

// Middleware validates bearer tokens and stores the principal on the request.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if _, ok := ValidRoles[claims.Role]; !ok {
		return apperrors.NewUnauthorized("unknown role")
	}

	c.Locals(principalKey, &Principal{ExternalID: claims.Subject, Role: claims.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
