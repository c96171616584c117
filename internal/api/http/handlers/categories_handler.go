package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CategoriesHandler serves category reads for everyone and mutations for
// admins; the route policy keeps the two apart.
type CategoriesHandler struct {
	service *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categoryService *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{service: categoryService}
}

// List GET /api/categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponses(categories)})
}

// Tree GET /api/categories/tree.
func (h *CategoriesHandler) Tree(c *fiber.Ctx) error {
	tree, err := h.service.Tree(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategoryNodes(tree)})
}

// Menu GET /api/menu.
func (h *CategoriesHandler) Menu(c *fiber.Ctx) error {
	tree, err := h.service.MenuTree(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategoryNodes(tree)})
}

// Get GET /api/categories/:id.
func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	category, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// GetBySlug GET /api/categories/slug/:slug.
func (h *CategoriesHandler) GetBySlug(c *fiber.Ctx) error {
	category, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// Create POST /api/admin/categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateCategoryRequest(req); err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), req.ToCategory())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromCategory(created)})
}

// Update PUT /api/admin/categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateCategoryRequest(req); err != nil {
		return err
	}

	category := req.ToCategory()
	category.ID = id
	updated, err := h.service.Update(c.UserContext(), category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategory(updated)})
}

// Delete DELETE /api/admin/categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validateCategoryRequest(req dto.CategoryRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return apperrors.NewValidationError("name and slug required", nil)
	}
	return nil
}

func categoryResponses(categories []*domain.Category) []dto.CategoryResponse {
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.FromCategory(category))
	}
	return items
}
