package auth

import "strings"

// RolePrefix is the canonical authorization prefix. Stored and claimed roles
// drift between prefixed and unprefixed forms depending on origin (password
// login, Google login, legacy records), so every comparison goes through
// NormalizeRole instead of touching raw strings.
const RolePrefix = "ROLE_"

// DefaultRole is the canonical tag assumed when a record or claim carries no
// role at all.
const DefaultRole = RolePrefix + "USER"

// RoleAdmin and RoleUser are the canonical tags for the closed role set.
const (
	RoleAdmin = RolePrefix + "ADMIN"
	RoleUser  = RolePrefix + "USER"
)

// NormalizeRole maps a raw role string to its canonical tag. Empty input
// yields DefaultRole, already-prefixed input is returned unchanged, anything
// else gets the prefix prepended. The mapping is idempotent.
func NormalizeRole(raw string) string {
	role := strings.TrimSpace(raw)
	if role == "" {
		return DefaultRole
	}
	if strings.HasPrefix(role, RolePrefix) {
		return role
	}
	return RolePrefix + role
}
