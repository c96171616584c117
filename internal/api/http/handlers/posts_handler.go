package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// PostsHandler manages the admin post endpoints, drafts included.
type PostsHandler struct {
	service *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(postService *service.PostService) *PostsHandler {
	return &PostsHandler{service: postService}
}

// List GET /api/admin/posts.
func (h *PostsHandler) List(c *fiber.Ctx) error {
	page, size := parsePaging(c)
	result, err := h.service.ListAll(c.UserContext(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPostPage(result)})
}

// Get GET /api/admin/posts/:id.
func (h *PostsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	post, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPost(post)})
}

// Create POST /api/admin/posts.
func (h *PostsHandler) Create(c *fiber.Ctx) error {
	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validatePostRequest(req); err != nil {
		return err
	}

	post := req.ToPost()
	post.AuthorID = auth.ContextFrom(c).UserID

	created, err := h.service.Create(c.UserContext(), post)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromPost(created)})
}

// Update PUT /api/admin/posts/:id.
func (h *PostsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validatePostRequest(req); err != nil {
		return err
	}

	existing, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	post := req.ToPost()
	post.ID = id
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt

	updated, err := h.service.Update(c.UserContext(), post)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPost(updated)})
}

// Delete DELETE /api/admin/posts/:id.
func (h *PostsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validatePostRequest(req dto.PostRequest) error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Slug) == "" {
		return apperrors.NewValidationError("title and slug required", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	return nil
}
