package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func testPolicy() *Policy {
	return NewPolicy([]RouteRule{
		{Pattern: "/health/**", Access: AccessPublic},
		{Pattern: "/api/auth/**", Access: AccessPublic},
		{Pattern: "/api/posts/public/**", Access: AccessPublic},
		{Pattern: "/api/profile/**", Access: AccessAuthenticated},
		{Pattern: "/admin/**", Access: AccessRoles, Roles: []string{"ADMIN"}},
		{Pattern: "/api/admin/**", Access: AccessRoles, Roles: []string{"ADMIN"}},
	})
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestPublicRouteAllowsAnonymous(t *testing.T) {
	p := testPolicy()
	assert.NoError(t, p.Authorize("/api/posts/public/latest", &AuthContext{}))
	assert.NoError(t, p.Authorize("/health/live", &AuthContext{}))
}

func TestAdminRouteDeniesInsufficientRole(t *testing.T) {
	p := testPolicy()

	err := p.Authorize("/admin/posts", &AuthContext{Authenticated: true, Role: "ROLE_USER"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	err = p.Authorize("/admin/posts", &AuthContext{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	assert.NoError(t, p.Authorize("/admin/posts", &AuthContext{Authenticated: true, Role: "ROLE_ADMIN"}))
}

func TestAdminRouteNormalizesClaimedRole(t *testing.T) {
	p := testPolicy()
	// Unprefixed role claims must still authorize after normalization.
	assert.NoError(t, p.Authorize("/api/admin/users", &AuthContext{Authenticated: true, Role: "ADMIN"}))
}

func TestAuthenticatedRoute(t *testing.T) {
	p := testPolicy()

	err := p.Authorize("/api/profile/avatar", &AuthContext{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	assert.NoError(t, p.Authorize("/api/profile/avatar", &AuthContext{Authenticated: true, Role: "ROLE_USER"}))
}

func TestUnmatchedRouteRequiresAuthentication(t *testing.T) {
	p := testPolicy()

	err := p.Authorize("/api/unlisted", &AuthContext{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	assert.NoError(t, p.Authorize("/api/unlisted", &AuthContext{Authenticated: true}))
}

func TestFirstMatchWins(t *testing.T) {
	p := NewPolicy([]RouteRule{
		{Pattern: "/api/things/special", Access: AccessPublic},
		{Pattern: "/api/things/**", Access: AccessRoles, Roles: []string{"ADMIN"}},
	})

	assert.NoError(t, p.Authorize("/api/things/special", &AuthContext{}))
	err := p.Authorize("/api/things/other", &AuthContext{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/posts", "/api/posts", true},
		{"/api/posts", "/api/posts/1", false},
		{"/api/posts/*", "/api/posts/1", true},
		{"/api/posts/*", "/api/posts/1/edit", false},
		{"/api/posts/*/edit", "/api/posts/1/edit", true},
		{"/admin/**", "/admin", true},
		{"/admin/**", "/admin/posts/1/edit", true},
		{"/admin/**", "/api/admin", false},
		{"/", "/", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchPattern(tc.pattern, tc.path), "%s vs %s", tc.pattern, tc.path)
	}
}
