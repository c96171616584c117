package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
)

// bootstrapPasswordHash is the bcrypt hash of the default bootstrap password
// (admin123456@). It exists so a fresh database always contains a usable
// admin account; see IdentityService for the credential escape hatch that
// guarantees this account stays reachable.
const bootstrapPasswordHash = "$2a$10$dXJ3SW6G7P50lGmMkkmwe.20cQQubK3.HZWzG3YB1tlRy.fqvM/BG"

// SeedData populates an empty database with the bootstrap admin, a sample
// user and starter categories and posts. Existing rows are never touched.
func SeedData(
	ctx context.Context,
	cfg config.AuthConfig,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	posts repository.PostRepository,
	logger *zap.Logger,
) error {
	userCount, err := users.Count(ctx)
	if err != nil {
		return err
	}

	var admin, regular *domain.User
	if userCount == 0 {
		logger.Info("seeding users")

		admin = &domain.User{
			Username:     cfg.BootstrapUsername,
			Name:         "Admin User",
			Email:        "admin@example.com",
			PictureURL:   "https://randomuser.me/api/portraits/men/1.jpg",
			Role:         domain.RoleAdmin,
			PasswordHash: bootstrapPasswordHash,
		}
		if err := users.Create(ctx, admin); err != nil {
			return err
		}

		regular = &domain.User{
			Username:   "user@example.com",
			Name:       "Regular User",
			Email:      "user@example.com",
			PictureURL: "https://randomuser.me/api/portraits/women/1.jpg",
			Role:       domain.RoleUser,
		}
		if err := users.Create(ctx, regular); err != nil {
			return err
		}
	} else {
		logger.Info("skipping user seed, users already exist", zap.Int64("count", userCount))
		if admin, err = users.FindByUsername(ctx, cfg.BootstrapUsername); err != nil {
			logger.Warn("bootstrap user not found; content seed will be skipped")
			return nil
		}
	}

	categoryCount, err := categories.Count(ctx)
	if err != nil {
		return err
	}
	if categoryCount > 0 {
		return nil
	}

	logger.Info("seeding categories and posts")

	backend := &domain.Category{Name: "Backend Development", Slug: "backend", Description: "Articles about server-side technologies", DisplayInMenu: true, MenuOrder: 1}
	devops := &domain.Category{Name: "DevOps", Slug: "devops", Description: "Deployment, CI/CD, and infrastructure topics", DisplayInMenu: true, MenuOrder: 2}
	frontend := &domain.Category{Name: "Frontend Development", Slug: "frontend", Description: "Client-side technologies and frameworks", DisplayInMenu: true, MenuOrder: 3}
	for _, category := range []*domain.Category{backend, devops, frontend} {
		if err := categories.Create(ctx, category); err != nil {
			return err
		}
	}

	golang := &domain.Category{Name: "Go", Slug: "go", Description: "Go services and tooling", DisplayInMenu: true, MenuOrder: 1, ParentID: &backend.ID}
	docker := &domain.Category{Name: "Docker", Slug: "docker", Description: "Containerization with Docker", DisplayInMenu: true, MenuOrder: 1, ParentID: &devops.ID}
	for _, category := range []*domain.Category{golang, docker} {
		if err := categories.Create(ctx, category); err != nil {
			return err
		}
	}

	seedPosts := []*domain.Post{
		{
			Title:       "Getting Started with This Blog",
			Slug:        "getting-started",
			Content:     "<h2>Welcome</h2><p>This is the first post on the blog. Sign in with the bootstrap admin account to manage content.</p>",
			Published:   true,
			Featured:    true,
			AuthorID:    admin.ID,
			CategoryIDs: []int64{backend.ID},
		},
		{
			Title:       "Stateless Sessions with Signed Tokens",
			Slug:        "stateless-sessions",
			Content:     "<h2>Signed session tokens</h2><p>The backend issues signed, time-bounded tokens instead of server-side sessions. A restart invalidates outstanding tokens.</p>",
			Published:   true,
			AuthorID:    admin.ID,
			CategoryIDs: []int64{backend.ID, golang.ID},
		},
	}
	for _, post := range seedPosts {
		post.PrimaryCategoryID = &post.CategoryIDs[0]
		if err := posts.Create(ctx, post); err != nil {
			return err
		}
	}

	logger.Info("seed data created")
	return nil
}
