package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// UserAdminService implements the admin-side account management surface.
// Unlike registration, accounts created here carry whatever role the admin
// assigns and never go through the first-user promotion.
type UserAdminService struct {
	users      repository.UserRepository
	logger     *zap.Logger
	bcryptCost int
}

// NewUserAdminService builds the service.
func NewUserAdminService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *UserAdminService {
	return &UserAdminService{users: users, logger: logger, bcryptCost: cfg.BcryptCost}
}

// UserUpdateInput carries the admin-editable fields. Empty fields are left
// unchanged.
type UserUpdateInput struct {
	Username string
	Name     string
	Email    string
	Role     string
	Password string
}

// List returns every account.
func (s *UserAdminService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListAll(ctx)
}

// Get returns one account by id.
func (s *UserAdminService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return user, err
}

// Create provisions an account with an explicit role. The password is
// optional; without one the account can only ever log in externally.
func (s *UserAdminService) Create(ctx context.Context, in UserUpdateInput) (*domain.User, error) {
	if exists, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, apperrors.NewConflict("email already in use", map[string]any{"email": in.Email})
	}
	if in.Username != "" {
		if exists, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
			return nil, err
		} else if exists {
			return nil, apperrors.NewConflict("username already in use", map[string]any{"username": in.Username})
		}
	}

	user := &domain.User{
		Username:   in.Username,
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		PictureURL: avatarURL(in.Name),
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("account already exists", map[string]any{"email": in.Email})
		}
		return nil, err
	}
	return user, nil
}

// Update applies the provided fields to an existing account, re-hashing the
// password when a new one is given.
func (s *UserAdminService) Update(ctx context.Context, id int64, in UserUpdateInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != user.Email {
		if exists, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
			return nil, err
		} else if exists {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": in.Email})
		}
		user.Email = in.Email
	}
	if in.Username != "" && in.Username != user.Username {
		if exists, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
			return nil, err
		} else if exists {
			return nil, apperrors.NewConflict("username already in use", map[string]any{"username": in.Username})
		}
		user.Username = in.Username
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("identifier already in use", map[string]any{"email": user.Email, "username": user.Username})
		}
		return nil, err
	}
	return user, nil
}

// Delete removes an account.
func (s *UserAdminService) Delete(ctx context.Context, id int64) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return err
}
