package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

type contextDump struct {
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject"`
	Role          string `json:"role"`
	UserID        int64  `json:"userId"`
}

func newTestApp(tm *TokenManager, policy *Policy) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})

	authenticator := NewAuthenticator(tm, zap.NewNop())
	app.Use(authenticator.Handle)
	if policy != nil {
		app.Use(policy.Handle)
	}

	dump := func(c *fiber.Ctx) error {
		ctx := ContextFrom(c)
		return c.JSON(contextDump{
			Authenticated: ctx.Authenticated,
			Subject:       ctx.Subject,
			Role:          ctx.Role,
			UserID:        ctx.UserID,
		})
	}
	app.Get("/api/posts/public", dump)
	app.Get("/api/admin/posts", dump)
	app.Get("/api/profile", dump)
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, token string) (*http.Response, contextDump) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var dump contextDump
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&dump))
	}
	return resp, dump
}

func TestAuthenticatorWithoutTokenYieldsAnonymous(t *testing.T) {
	tm := newTestManager(time.Hour)
	app := newTestApp(tm, nil)

	resp, dump := doRequest(t, app, "/api/posts/public", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, dump.Authenticated)
	assert.Empty(t, dump.Subject)
}

func TestAuthenticatorPopulatesContextFromValidToken(t *testing.T) {
	tm := newTestManager(time.Hour)
	app := newTestApp(tm, nil)

	token, _, err := tm.Issue("a@x.com", "ADMIN", 7)
	require.NoError(t, err)

	resp, dump := doRequest(t, app, "/api/posts/public", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dump.Authenticated)
	assert.Equal(t, "a@x.com", dump.Subject)
	assert.Equal(t, "ROLE_ADMIN", dump.Role)
	assert.Equal(t, int64(7), dump.UserID)
}

func TestAuthenticatorDegradesInvalidTokenToAnonymous(t *testing.T) {
	tm := newTestManager(time.Hour)
	app := newTestApp(tm, nil)

	resp, dump := doRequest(t, app, "/api/posts/public", "garbage.token.value")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, dump.Authenticated)
}

func TestPolicyRejectsAtRouteLayer(t *testing.T) {
	tm := newTestManager(time.Hour)
	policy := NewPolicy([]RouteRule{
		{Pattern: "/api/posts/public/**", Access: AccessPublic},
		{Pattern: "/api/profile/**", Access: AccessAuthenticated},
		{Pattern: "/api/admin/**", Access: AccessRoles, Roles: []string{"ADMIN"}},
	})
	app := newTestApp(tm, policy)

	// Invalid token on a protected route: the authenticator degrades to
	// anonymous and the policy layer rejects with 401.
	resp, _ := doRequest(t, app, "/api/profile", "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Same invalid token on a public route sails through.
	resp, _ = doRequest(t, app, "/api/posts/public", "garbage")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	userToken, _, err := tm.Issue("u@x.com", "USER", 2)
	require.NoError(t, err)
	resp, _ = doRequest(t, app, "/api/admin/posts", userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken, _, err := tm.Issue("a@x.com", "ADMIN", 1)
	require.NoError(t, err)
	resp, dump := doRequest(t, app, "/api/admin/posts", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ROLE_ADMIN", dump.Role)
}
