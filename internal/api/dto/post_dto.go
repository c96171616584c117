package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// PostRequest payload for creating or updating posts.
type PostRequest struct {
	Title             string   `json:"title"`
	Slug              string   `json:"slug"`
	Content           string   `json:"content"`
	CoverImage        string   `json:"cover_image"`
	Tags              []string `json:"tags"`
	Published         bool     `json:"published"`
	Featured          bool     `json:"featured"`
	PrimaryCategoryID *int64   `json:"primary_category_id"`
	CategoryIDs       []int64  `json:"category_ids"`
}

// ToPost maps the request onto a domain post.
func (r PostRequest) ToPost() *domain.Post {
	return &domain.Post{
		Title:             r.Title,
		Slug:              r.Slug,
		Content:           r.Content,
		CoverImage:        r.CoverImage,
		Tags:              r.Tags,
		Published:         r.Published,
		Featured:          r.Featured,
		PrimaryCategoryID: r.PrimaryCategoryID,
		CategoryIDs:       r.CategoryIDs,
	}
}

// PostResponse is the public representation of a post.
type PostResponse struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	Content           string    `json:"content"`
	CoverImage        string    `json:"cover_image,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	Published         bool      `json:"published"`
	Featured          bool      `json:"featured"`
	AuthorID          int64     `json:"author_id"`
	PrimaryCategoryID *int64    `json:"primary_category_id,omitempty"`
	CategoryIDs       []int64   `json:"category_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FromPost maps a domain post to its DTO.
func FromPost(post *domain.Post) PostResponse {
	return PostResponse{
		ID:                post.ID,
		Title:             post.Title,
		Slug:              post.Slug,
		Content:           post.Content,
		CoverImage:        post.CoverImage,
		Tags:              post.Tags,
		Published:         post.Published,
		Featured:          post.Featured,
		AuthorID:          post.AuthorID,
		PrimaryCategoryID: post.PrimaryCategoryID,
		CategoryIDs:       post.CategoryIDs,
		CreatedAt:         post.CreatedAt,
		UpdatedAt:         post.UpdatedAt,
	}
}

// PostPageResponse is the pagination envelope for post listings.
type PostPageResponse struct {
	Items      []PostResponse `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// FromPostPage maps a domain page to its DTO.
func FromPostPage(page *domain.PostPage) PostPageResponse {
	items := make([]PostResponse, 0, len(page.Items))
	for _, post := range page.Items {
		items = append(items, FromPost(post))
	}
	return PostPageResponse{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}
