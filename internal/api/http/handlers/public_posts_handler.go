package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// PublicPostsHandler serves the anonymous read side of the blog.
type PublicPostsHandler struct {
	service *service.PostService
}

// NewPublicPostsHandler constructs handler.
func NewPublicPostsHandler(postService *service.PostService) *PublicPostsHandler {
	return &PublicPostsHandler{service: postService}
}

// List GET /api/posts/public.
func (h *PublicPostsHandler) List(c *fiber.Ctx) error {
	page, size := parsePaging(c)
	result, err := h.service.ListPublished(c.UserContext(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPostPage(result)})
}

// GetBySlug GET /api/posts/public/:slug.
func (h *PublicPostsHandler) GetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := h.service.GetPublishedBySlug(c.UserContext(), slug)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPost(post)})
}

// Featured GET /api/posts/public/featured.
func (h *PublicPostsHandler) Featured(c *fiber.Ctx) error {
	posts, err := h.service.ListFeatured(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": postResponses(posts)})
}

// Search GET /api/posts/public/search?q=term.
func (h *PublicPostsHandler) Search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return apperrors.NewValidationError("q required", nil)
	}
	page, size := parsePaging(c)
	result, err := h.service.Search(c.UserContext(), term, page, size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPostPage(result)})
}

// ByCategory GET /api/posts/public/category/:id.
func (h *PublicPostsHandler) ByCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	page, size := parsePaging(c)
	result, err := h.service.ListByCategory(c.UserContext(), categoryID, page, size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPostPage(result)})
}

func postResponses(posts []*domain.Post) []dto.PostResponse {
	items := make([]dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		items = append(items, dto.FromPost(post))
	}
	return items
}

func parsePaging(c *fiber.Ctx) (int, int) {
	return parseInt(c.Query("page"), 1), parseInt(c.Query("size"), 10)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseID(val string) (int64, error) {
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": val})
	}
	return id, nil
}
