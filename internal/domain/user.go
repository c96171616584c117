package domain

import "time"

// Role values stored on a user record. Stored roles are unprefixed; the
// canonical ROLE_-prefixed form used by authorization checks is produced by
// the auth package's normalizer.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the account record for both password and Google-authenticated
// callers. PasswordHash is empty for accounts provisioned from an external
// identity, and Username is empty for accounts that only ever logged in via
// Google.
type User struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PictureURL   string
	Role         string
	PasswordHash string
	GoogleID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
