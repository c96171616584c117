package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/service"
)

// StartCacheInvalidator subscribes cache-invalidation handlers to content
// change events so the public read caches never serve stale pages for long.
func StartCacheInvalidator(dispatcher events.Dispatcher, cache *service.ContentCache, logger *zap.Logger) {
	if dispatcher == nil || cache == nil {
		return
	}

	invalidatePosts := func(ctx context.Context, event events.Event) error {
		logger.Debug("invalidating post caches", zap.String("event", string(event.Type)))
		cache.InvalidatePrefix(ctx, "posts:")
		return nil
	}
	dispatcher.Subscribe(events.EventPostCreated, invalidatePosts)
	dispatcher.Subscribe(events.EventPostUpdated, invalidatePosts)
	dispatcher.Subscribe(events.EventPostDeleted, invalidatePosts)

	dispatcher.Subscribe(events.EventCategoryChanged, func(ctx context.Context, event events.Event) error {
		logger.Debug("invalidating category caches", zap.String("event", string(event.Type)))
		cache.InvalidatePrefix(ctx, "categories:")
		cache.InvalidatePrefix(ctx, "menu:")
		// Category changes also affect post listings filtered by category.
		cache.InvalidatePrefix(ctx, "posts:")
		return nil
	})
}
