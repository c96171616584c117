package dto

import "github.com/spec-kit/blog-service/internal/domain"

// CategoryRequest payload for creating or updating categories.
type CategoryRequest struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	DisplayInMenu bool   `json:"display_in_menu"`
	MenuOrder     int    `json:"menu_order"`
	ParentID      *int64 `json:"parent_id"`
}

// ToCategory maps the request onto a domain category.
func (r CategoryRequest) ToCategory() *domain.Category {
	return &domain.Category{
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		DisplayInMenu: r.DisplayInMenu,
		MenuOrder:     r.MenuOrder,
		ParentID:      r.ParentID,
	}
}

// CategoryResponse is the public representation of a category.
type CategoryResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description,omitempty"`
	DisplayInMenu bool   `json:"display_in_menu"`
	MenuOrder     int    `json:"menu_order"`
	ParentID      *int64 `json:"parent_id,omitempty"`
}

// FromCategory maps a domain category to its DTO.
func FromCategory(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:            category.ID,
		Name:          category.Name,
		Slug:          category.Slug,
		Description:   category.Description,
		DisplayInMenu: category.DisplayInMenu,
		MenuOrder:     category.MenuOrder,
		ParentID:      category.ParentID,
	}
}

// CategoryNodeResponse is a category with its children, used by the menu and
// tree endpoints.
type CategoryNodeResponse struct {
	CategoryResponse
	Children []CategoryNodeResponse `json:"children,omitempty"`
}

// FromCategoryNodes maps a category tree to its DTO form.
func FromCategoryNodes(nodes []*domain.CategoryNode) []CategoryNodeResponse {
	out := make([]CategoryNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, CategoryNodeResponse{
			CategoryResponse: FromCategory(&node.Category),
			Children:         FromCategoryNodes(node.Children),
		})
	}
	return out
}
