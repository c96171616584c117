package domain

import "time"

// Category groups posts and optionally appears in the site menu. Categories
// form a tree via ParentID.
type Category struct {
	ID            int64
	Name          string
	Slug          string
	Description   string
	DisplayInMenu bool
	MenuOrder     int
	ParentID      *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CategoryNode is a category with its resolved children, used for the menu
// tree endpoints.
type CategoryNode struct {
	Category
	Children []*CategoryNode
}
