package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostService implements the content CRUD and the cached public read paths.
type PostService struct {
	posts      repository.PostRepository
	cache      *ContentCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPostService builds the service.
func NewPostService(posts repository.PostRepository, cache *ContentCache, dispatcher events.Dispatcher, logger *zap.Logger) *PostService {
	return &PostService{posts: posts, cache: cache, dispatcher: dispatcher, logger: logger}
}

// ListPublished returns a page of published posts, served from cache when
// possible.
func (s *PostService) ListPublished(ctx context.Context, page, size int) (*domain.PostPage, error) {
	page, size = clampPaging(page, size)

	key := fmt.Sprintf("posts:published:%d:%d", page, size)
	var cached domain.PostPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.posts.List(ctx, true, page, size)
	if err != nil {
		return nil, err
	}
	result := pageOf(items, page, size, total)
	s.cache.Set(ctx, key, result)
	return result, nil
}

// ListAll returns a page of all posts including drafts (admin view).
func (s *PostService) ListAll(ctx context.Context, page, size int) (*domain.PostPage, error) {
	page, size = clampPaging(page, size)
	items, total, err := s.posts.List(ctx, false, page, size)
	if err != nil {
		return nil, err
	}
	return pageOf(items, page, size, total), nil
}

// GetPublishedBySlug returns a published post by its slug.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	key := "posts:slug:" + slug
	var cached domain.Post
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	post, err := s.posts.GetBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("post", map[string]any{"slug": slug})
	}
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, apperrors.NewNotFound("post", map[string]any{"slug": slug})
	}
	s.cache.Set(ctx, key, post)
	return post, nil
}

// GetByID returns any post by id (admin view).
func (s *PostService) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("post", map[string]any{"id": id})
	}
	return post, err
}

// ListFeatured returns the published featured posts.
func (s *PostService) ListFeatured(ctx context.Context) ([]*domain.Post, error) {
	key := "posts:featured"
	var cached []*domain.Post
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := s.posts.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, items)
	return items, nil
}

// Search returns published posts whose title or content matches the term.
func (s *PostService) Search(ctx context.Context, term string, page, size int) (*domain.PostPage, error) {
	page, size = clampPaging(page, size)
	items, total, err := s.posts.Search(ctx, term, true, page, size)
	if err != nil {
		return nil, err
	}
	return pageOf(items, page, size, total), nil
}

// ListByCategory returns published posts in the given category.
func (s *PostService) ListByCategory(ctx context.Context, categoryID int64, page, size int) (*domain.PostPage, error) {
	page, size = clampPaging(page, size)

	key := fmt.Sprintf("posts:category:%d:%d:%d", categoryID, page, size)
	var cached domain.PostPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.posts.ListByCategory(ctx, categoryID, page, size)
	if err != nil {
		return nil, err
	}
	result := pageOf(items, page, size, total)
	s.cache.Set(ctx, key, result)
	return result, nil
}

// Create stores a new post authored by the given user.
func (s *PostService) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.posts.Create(ctx, post); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("slug already in use", map[string]any{"slug": post.Slug})
		}
		return nil, err
	}
	s.publish(ctx, events.EventPostCreated, post)
	return post, nil
}

// Update modifies an existing post.
func (s *PostService) Update(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", map[string]any{"id": post.ID})
		}
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("slug already in use", map[string]any{"slug": post.Slug})
		}
		return nil, err
	}
	s.publish(ctx, events.EventPostUpdated, post)
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventPostDeleted, post)
	return nil
}

func (s *PostService) publish(ctx context.Context, eventType events.EventType, post *domain.Post) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   events.PostChangedPayload{PostID: post.ID, Slug: post.Slug, Published: post.Published},
	})
}

func clampPaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func pageOf(items []*domain.Post, page, size int, total int64) *domain.PostPage {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &domain.PostPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
