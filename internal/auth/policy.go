package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// Access levels for a route rule.
type Access int

const (
	// AccessPublic allows every caller, authenticated or not.
	AccessPublic Access = iota
	// AccessAuthenticated allows any authenticated caller regardless of role.
	AccessAuthenticated
	// AccessRoles allows authenticated callers whose normalized role is in
	// the rule's allowed set.
	AccessRoles
)

// RouteRule maps a path pattern to an access requirement. Patterns are
// slash-separated with two wildcards: `*` matches exactly one segment and
// `**` matches any remainder, so `/api/admin/**` covers the whole admin
// surface.
type RouteRule struct {
	Pattern string
	Access  Access
	Roles   []string
}

// Policy is an ordered rule table evaluated top to bottom, first match wins.
// Paths matching no rule require authentication.
type Policy struct {
	rules []RouteRule
}

// NewPolicy builds the table. Role names are normalized once here so the
// evaluation never compares raw role strings.
func NewPolicy(rules []RouteRule) *Policy {
	normalized := make([]RouteRule, len(rules))
	for i, rule := range rules {
		copied := rule
		if rule.Access == AccessRoles {
			copied.Roles = make([]string, len(rule.Roles))
			for j, role := range rule.Roles {
				copied.Roles[j] = NormalizeRole(role)
			}
		}
		normalized[i] = copied
	}
	return &Policy{rules: normalized}
}

// Authorize evaluates the table for the request path. Deny reports only the
// two HTTP-meaningful outcomes: unauthenticated (401) or insufficient role
// (403); which rule failed is not revealed.
func (p *Policy) Authorize(path string, ctx *AuthContext) error {
	for _, rule := range p.rules {
		if !matchPattern(rule.Pattern, path) {
			continue
		}
		return rule.check(ctx)
	}
	// Default: any authenticated caller.
	if !ctx.Authenticated {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

// Handle enforces the policy as a fiber middleware, running after the
// authenticator has populated the request context.
func (p *Policy) Handle(c *fiber.Ctx) error {
	if err := p.Authorize(c.Path(), ContextFrom(c)); err != nil {
		return err
	}
	return c.Next()
}

func (r RouteRule) check(ctx *AuthContext) error {
	switch r.Access {
	case AccessPublic:
		return nil
	case AccessAuthenticated:
		if !ctx.Authenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		return nil
	default:
		if !ctx.Authenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		role := NormalizeRole(ctx.Role)
		for _, allowed := range r.Roles {
			if role == allowed {
				return nil
			}
		}
		return apperrors.NewForbidden("forbidden")
	}
}

func matchPattern(pattern, path string) bool {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)
	return matchSegments(patternParts, pathParts)
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		// `**` also matches zero segments.
		if matchSegments(pattern[1:], path) {
			return true
		}
		return len(path) > 0 && matchSegments(pattern, path[1:])
	}
	if len(path) == 0 {
		return false
	}
	if pattern[0] != "*" && pattern[0] != path[0] {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
