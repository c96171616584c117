package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// ExternalIdentity is a verified identity returned by an external provider.
// The provider is the source of truth for the profile fields, never for the
// role.
type ExternalIdentity struct {
	ExternalID string
	Email      string
	Name       string
	PictureURL string
}

// IdentityService resolves or provisions user records from credentials, from
// verified external identities, and from token subjects.
type IdentityService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
}

// NewIdentityService builds the service.
func NewIdentityService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AuthConfig) *IdentityService {
	return &IdentityService{users: users, dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// ResolveByCredentials looks the account up by username, falling back to
// email, and verifies the secret against the stored hash. Every failure mode
// collapses to the same invalid-credentials error.
func (s *IdentityService) ResolveByCredentials(ctx context.Context, identifier, secret string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, identifier)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = s.users.FindByEmail(ctx, identifier)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash != "" && auth.ComparePassword(user.PasswordHash, secret) == nil {
		return user, nil
	}

	// SECURITY EXCEPTION: the reserved bootstrap credential pair authenticates
	// even when the stored hash disagrees, and force-corrects the account role
	// to ADMIN. This is an operational escape hatch for initial setup only and
	// is slated for removal in a hardening pass.
	if s.matchesBootstrapCredentials(user, secret) {
		s.logger.Warn("bootstrap credential override used", zap.String("username", user.Username))
		if user.Role != domain.RoleAdmin {
			user.Role = domain.RoleAdmin
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	return nil, apperrors.NewInvalidCredentials()
}

// matchesBootstrapCredentials reports whether the account is the configured
// bootstrap account and the submitted secret is the bootstrap secret. The
// identifier the caller logged in with does not matter; the bootstrap account
// is reachable by username or email like any other.
func (s *IdentityService) matchesBootstrapCredentials(user *domain.User, secret string) bool {
	return s.cfg.BootstrapUsername != "" &&
		user.Username == s.cfg.BootstrapUsername &&
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.BootstrapPassword)) == 1
}

// ResolveOrProvisionExternal looks up the account by external id, merges with
// an existing account by email, or creates a new one. Profile fields are
// refreshed from the external claims on every call. The first account ever
// created becomes ADMIN; otherwise an empty role defaults to the configured
// default.
func (s *IdentityService) ResolveOrProvisionExternal(ctx context.Context, ext ExternalIdentity) (*domain.User, error) {
	user, err := s.users.FindByGoogleID(ctx, ext.ExternalID)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = s.users.FindByEmail(ctx, ext.Email)
		if errors.Is(err, pgx.ErrNoRows) {
			return s.provisionExternal(ctx, ext)
		}
		if err != nil {
			return nil, err
		}
		// Merge a first-time external login into the existing local account.
		user.GoogleID = ext.ExternalID
	} else if err != nil {
		return nil, err
	}

	user.Name = ext.Name
	user.Email = ext.Email
	user.PictureURL = ext.PictureURL
	if user.Role == "" {
		user.Role = s.defaultRole()
	}
	if err := s.users.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("account already exists", map[string]any{"email": ext.Email})
		}
		return nil, err
	}
	return user, nil
}

func (s *IdentityService) provisionExternal(ctx context.Context, ext ExternalIdentity) (*domain.User, error) {
	role, err := s.roleForNewUser(ctx)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:       ext.Name,
		Email:      ext.Email,
		PictureURL: ext.PictureURL,
		GoogleID:   ext.ExternalID,
		Role:       role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			// Lost a provisioning race: the winner's row satisfies this call.
			return s.recoverFromProvisionRace(ctx, ext)
		}
		return nil, err
	}

	s.publishProvisioned(ctx, user)
	return user, nil
}

// recoverFromProvisionRace retries the resolve path as a plain lookup after a
// uniqueness conflict. A second miss means the conflict came from somewhere
// unexpected and is surfaced as such.
func (s *IdentityService) recoverFromProvisionRace(ctx context.Context, ext ExternalIdentity) (*domain.User, error) {
	user, err := s.users.FindByGoogleID(ctx, ext.ExternalID)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = s.users.FindByEmail(ctx, ext.Email)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewConflict("account already exists", map[string]any{"email": ext.Email})
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveBySubject re-hydrates the account behind a token subject. A missing
// record (deleted after issuance) is a not-found outcome the caller must
// treat as an authentication failure, not a server fault.
func (s *IdentityService) ResolveBySubject(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, subject)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"email": subject})
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateLocal provisions a password account. The first account ever created
// becomes ADMIN, all later ones get the configured default role.
func (s *IdentityService) CreateLocal(ctx context.Context, username, name, email, passwordHash string) (*domain.User, error) {
	role, err := s.roleForNewUser(ctx)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		PictureURL:   avatarURL(name),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("account already exists", map[string]any{"email": email})
		}
		return nil, err
	}

	s.publishProvisioned(ctx, user)
	return user, nil
}

func (s *IdentityService) roleForNewUser(ctx context.Context) (string, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return domain.RoleAdmin, nil
	}
	return s.defaultRole(), nil
}

func (s *IdentityService) defaultRole() string {
	if s.cfg.DefaultRole != "" {
		return s.cfg.DefaultRole
	}
	return domain.RoleUser
}

func (s *IdentityService) publishProvisioned(ctx context.Context, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserProvisioned,
		Subject:   user.Email,
		Timestamp: time.Now(),
		Payload:   events.UserProvisionedPayload{UserID: user.ID, Email: user.Email, Role: user.Role},
	})
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + strings.ReplaceAll(name, " ", "+") + "&background=random"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
