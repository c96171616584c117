package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/blog-service/internal/domain"
)

// PostRepository defines persistence access for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, publishedOnly bool, page, size int) ([]*domain.Post, int64, error)
	ListFeatured(ctx context.Context) ([]*domain.Post, error)
	ListByCategory(ctx context.Context, categoryID int64, page, size int) ([]*domain.Post, int64, error)
	Search(ctx context.Context, term string, publishedOnly bool, page, size int) ([]*domain.Post, int64, error)
	SetCategories(ctx context.Context, postID int64, categoryIDs []int64) error
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository returns a Postgres-backed implementation.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postColumns = `
        p.id, p.title, p.slug, p.content, COALESCE(p.cover_image, ''), p.tags,
        p.published, p.featured, p.author_id, p.primary_category_id,
        p.created_at, p.updated_at`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (title, slug, content, cover_image, tags, published, featured, author_id, primary_category_id)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	if err := r.pool.QueryRow(ctx, query,
		post.Title,
		post.Slug,
		post.Content,
		post.CoverImage,
		post.Tags,
		post.Published,
		post.Featured,
		post.AuthorID,
		post.PrimaryCategoryID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return err
	}
	return r.SetCategories(ctx, post.ID, post.CategoryIDs)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	const query = `
        UPDATE posts SET title=$1, slug=$2, content=$3, cover_image=NULLIF($4, ''), tags=$5,
            published=$6, featured=$7, primary_category_id=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		post.Title,
		post.Slug,
		post.Content,
		post.CoverImage,
		post.Tags,
		post.Published,
		post.Featured,
		post.PrimaryCategoryID,
		post.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return r.SetCategories(ctx, post.ID, post.CategoryIDs)
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	return r.queryOne(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id=$1`, id)
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.queryOne(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.slug=$1`, slug)
}

func (r *postRepository) List(ctx context.Context, publishedOnly bool, page, size int) ([]*domain.Post, int64, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts p
        WHERE ($1::bool = FALSE OR p.published)
        ORDER BY p.created_at DESC
        LIMIT $2 OFFSET $3`
	const countQuery = `SELECT COUNT(*) FROM posts p WHERE ($1::bool = FALSE OR p.published)`

	return r.queryPage(ctx, query, countQuery,
		[]any{publishedOnly, size, (page - 1) * size},
		[]any{publishedOnly})
}

func (r *postRepository) ListFeatured(ctx context.Context) ([]*domain.Post, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts p
        WHERE p.featured AND p.published
        ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID int64, page, size int) ([]*domain.Post, int64, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts p
        JOIN post_categories pc ON pc.post_id = p.id
        WHERE pc.category_id = $1 AND p.published
        ORDER BY p.created_at DESC
        LIMIT $2 OFFSET $3`
	const countQuery = `
        SELECT COUNT(*)
        FROM posts p
        JOIN post_categories pc ON pc.post_id = p.id
        WHERE pc.category_id = $1 AND p.published`

	return r.queryPage(ctx, query, countQuery,
		[]any{categoryID, size, (page - 1) * size},
		[]any{categoryID})
}

func (r *postRepository) Search(ctx context.Context, term string, publishedOnly bool, page, size int) ([]*domain.Post, int64, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts p
        WHERE (p.title ILIKE '%' || $1 || '%' OR p.content ILIKE '%' || $1 || '%')
          AND ($2::bool = FALSE OR p.published)
        ORDER BY p.created_at DESC
        LIMIT $3 OFFSET $4`
	const countQuery = `
        SELECT COUNT(*)
        FROM posts p
        WHERE (p.title ILIKE '%' || $1 || '%' OR p.content ILIKE '%' || $1 || '%')
          AND ($2::bool = FALSE OR p.published)`

	return r.queryPage(ctx, query, countQuery,
		[]any{term, publishedOnly, size, (page - 1) * size},
		[]any{term, publishedOnly})
}

func (r *postRepository) SetCategories(ctx context.Context, postID int64, categoryIDs []int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM post_categories WHERE post_id=$1`, postID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postRepository) queryOne(ctx context.Context, query string, arg any) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	return r.attachCategories(ctx, post)
}

func (r *postRepository) queryPage(ctx context.Context, query, countQuery string, args, countArgs []any) ([]*domain.Post, int64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) attachCategories(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category_id FROM post_categories WHERE post_id=$1 ORDER BY category_id`, post.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		post.CategoryIDs = append(post.CategoryIDs, id)
	}
	return post, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.CoverImage,
		&post.Tags,
		&post.Published,
		&post.Featured,
		&post.AuthorID,
		&post.PrimaryCategoryID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func scanPosts(rows pgx.Rows) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
