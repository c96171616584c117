package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CategoryService manages the category tree and the site menu.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      *ContentCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewCategoryService builds the service.
func NewCategoryService(categories repository.CategoryRepository, cache *ContentCache, dispatcher events.Dispatcher, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, cache: cache, dispatcher: dispatcher, logger: logger}
}

// ListAll returns all categories flat, ordered by menu order then name.
func (s *CategoryService) ListAll(ctx context.Context) ([]*domain.Category, error) {
	key := "categories:all"
	var cached []*domain.Category
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, items)
	return items, nil
}

// GetByID returns one category.
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("category", map[string]any{"id": id})
	}
	return category, err
}

// GetBySlug returns one category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("category", map[string]any{"slug": slug})
	}
	return category, err
}

// Tree returns the full category hierarchy.
func (s *CategoryService) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(all, false), nil
}

// MenuTree returns the hierarchy restricted to menu-visible categories,
// ordered by menu order.
func (s *CategoryService) MenuTree(ctx context.Context) ([]*domain.CategoryNode, error) {
	key := "menu:tree"
	var cached []*domain.CategoryNode
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	all, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tree := buildTree(all, true)
	s.cache.Set(ctx, key, tree)
	return tree, nil
}

// Create stores a new category.
func (s *CategoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.categories.Create(ctx, category); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("category name or slug already in use", map[string]any{"slug": category.Slug})
		}
		return nil, err
	}
	s.publish(ctx, category)
	return category, nil
}

// Update modifies an existing category.
func (s *CategoryService) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"id": category.ID})
		}
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("category name or slug already in use", map[string]any{"slug": category.Slug})
		}
		return nil, err
	}
	s.publish(ctx, category)
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, category)
	return nil
}

func (s *CategoryService) publish(ctx context.Context, category *domain.Category) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCategoryChanged,
		Timestamp: time.Now(),
		Payload:   events.CategoryChangedPayload{CategoryID: category.ID, Slug: category.Slug},
	})
}

func buildTree(all []*domain.Category, menuOnly bool) []*domain.CategoryNode {
	nodes := make(map[int64]*domain.CategoryNode, len(all))
	for _, category := range all {
		if menuOnly && !category.DisplayInMenu {
			continue
		}
		nodes[category.ID] = &domain.CategoryNode{Category: *category}
	}

	roots := make([]*domain.CategoryNode, 0)
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	return roots
}

func sortNodes(nodes []*domain.CategoryNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].MenuOrder != nodes[j].MenuOrder {
			return nodes[i].MenuOrder < nodes[j].MenuOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}
