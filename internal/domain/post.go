package domain

import "time"

// Post is a blog entry authored by a user.
type Post struct {
	ID                int64
	Title             string
	Slug              string
	Content           string
	CoverImage        string
	Tags              []string
	Published         bool
	Featured          bool
	AuthorID          int64
	PrimaryCategoryID *int64
	CategoryIDs       []int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PostPage is a pagination envelope for post listings.
type PostPage struct {
	Items      []*Post
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}
