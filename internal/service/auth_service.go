package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// AuthService coordinates registration, login and external login flows and
// issues session tokens.
type AuthService struct {
	identities *IdentityService
	verifier   IdentityVerifier
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, identities *IdentityService, verifier IdentityVerifier, tokenMgr *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		identities: identities,
		verifier:   verifier,
		tokenMgr:   tokenMgr,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new password account and issues a token.
func (s *AuthService) Register(ctx context.Context, username, name, email, password string) (*domain.User, string, time.Time, error) {
	if exists, err := s.identities.users.ExistsByEmail(ctx, email); err != nil {
		return nil, "", time.Time{}, err
	} else if exists {
		return nil, "", time.Time{}, apperrors.NewConflict("email already in use", map[string]any{"email": email})
	}
	if exists, err := s.identities.users.ExistsByUsername(ctx, username); err != nil {
		return nil, "", time.Time{}, err
	} else if exists {
		return nil, "", time.Time{}, apperrors.NewConflict("username already in use", map[string]any{"username": username})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.identities.CreateLocal(ctx, username, name, email, hash)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return s.issueFor(user)
}

// Login authenticates by username or email plus password.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, string, time.Time, error) {
	user, err := s.identities.ResolveByCredentials(ctx, identifier, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return s.issueFor(user)
}

// LoginWithGoogle verifies the external assertion, resolves or provisions the
// account and issues a token.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*domain.User, string, time.Time, error) {
	ext, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Debug("google verification failed", zap.Error(err))
		return nil, "", time.Time{}, apperrors.NewUnauthorized("google authentication failed")
	}

	user, err := s.identities.ResolveOrProvisionExternal(ctx, *ext)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return s.issueFor(user)
}

// CurrentUser re-hydrates the account behind a token subject.
func (s *AuthService) CurrentUser(ctx context.Context, subject string) (*domain.User, error) {
	return s.identities.ResolveBySubject(ctx, subject)
}

// Logout is a no-op: sessions are a single stateless token and "logout" is a
// client-side discard convention.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subject, currentPassword, newPassword string) error {
	user, err := s.identities.ResolveBySubject(ctx, subject)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" || auth.ComparePassword(user.PasswordHash, currentPassword) != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.identities.users.Update(ctx, user)
}

// UpdateProfile updates name, username and email of the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, subject, name, username, email string) (*domain.User, error) {
	user, err := s.identities.ResolveBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Username = username
	user.Email = email
	if err := s.identities.users.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("identifier already in use", map[string]any{"email": email, "username": username})
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar stores a new picture URL on the caller's account.
func (s *AuthService) UpdateAvatar(ctx context.Context, subject, pictureURL string) (*domain.User, error) {
	user, err := s.identities.ResolveBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	user.PictureURL = pictureURL
	if err := s.identities.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAvatar resets the caller's picture back to the generated default.
func (s *AuthService) DeleteAvatar(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.identities.ResolveBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	user.PictureURL = avatarURL(user.Name)
	if err := s.identities.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueFor(user *domain.User) (*domain.User, string, time.Time, error) {
	token, expiresAt, err := s.tokenMgr.Issue(user.Email, user.Role, user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}
