package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/blog-service/internal/api/http"
	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/observability"
	"github.com/spec-kit/blog-service/internal/persistence"
	"github.com/spec-kit/blog-service/internal/repository"
	"github.com/spec-kit/blog-service/internal/service"
	"github.com/spec-kit/blog-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)

	if cfg.Postgres.SeedData {
		if err := persistence.SeedData(ctx, cfg.Auth, userRepo, categoryRepo, postRepo, logger); err != nil {
			logger.Fatal("failed to seed data", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	cache := service.NewContentCache(redis.Client, cfg.Redis.CacheTTL, logger)
	worker.StartCacheInvalidator(dispatcher, cache, logger)

	keys := auth.NewKeyProvider()
	tokenMgr := auth.NewTokenManager(keys, cfg.Auth.TokenTTL())

	identityService := service.NewIdentityService(userRepo, dispatcher, logger, cfg.Auth)
	verifier := service.NewGoogleVerifier(cfg.Google.ClientID)
	authService := service.NewAuthService(cfg.Auth, identityService, verifier, tokenMgr, logger)
	postService := service.NewPostService(postRepo, cache, dispatcher, logger)
	categoryService := service.NewCategoryService(categoryRepo, cache, dispatcher, logger)
	userAdminService := service.NewUserAdminService(cfg.Auth, userRepo, logger)

	authenticator := auth.NewAuthenticator(tokenMgr, logger)
	policy := auth.NewPolicy(httptransport.AccessRules())

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:          handlers.NewAuthHandler(authService),
		Profile:       handlers.NewProfileHandler(authService),
		PublicPosts:   handlers.NewPublicPostsHandler(postService),
		Posts:         handlers.NewPostsHandler(postService),
		Categories:    handlers.NewCategoriesHandler(categoryService),
		Users:         handlers.NewUsersHandler(userAdminService),
		Authenticator: authenticator,
		Policy:        policy,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
