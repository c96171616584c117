package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const contextKey = "auth_context"

// AuthContext is the per-request record of the caller's authentication
// outcome. One instance is built per in-flight request, stored in the fiber
// locals, and never mutated after population.
type AuthContext struct {
	Authenticated bool
	Subject       string
	Role          string
	UserID        int64
}

// Authenticator extracts and validates bearer tokens on every request. A
// missing or invalid token is not an error here: the request proceeds with an
// anonymous context and the route policy decides whether that is acceptable.
type Authenticator struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *TokenManager, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

// Handle populates the request's AuthContext from the Authorization header.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	authCtx := &AuthContext{}
	c.Locals(contextKey, authCtx)

	tokenStr, ok := extractBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	claims, err := a.tokens.ParseAndVerify(tokenStr)
	if err != nil {
		// Degrade to anonymous; the specific reason stays in the logs.
		a.logger.Debug("token rejected",
			zap.String("reason", ClassifyTokenError(err)),
			zap.String("path", c.Path()))
		return c.Next()
	}

	authCtx.Authenticated = true
	authCtx.Subject = claims.Subject
	authCtx.Role = NormalizeRole(claims.Role)
	authCtx.UserID = claims.UserID
	return c.Next()
}

// ContextFrom retrieves the request's AuthContext. Requests that never passed
// through the authenticator read as anonymous.
func ContextFrom(c *fiber.Ctx) *AuthContext {
	if val, ok := c.Locals(contextKey).(*AuthContext); ok {
		return val
	}
	return &AuthContext{}
}

func extractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
