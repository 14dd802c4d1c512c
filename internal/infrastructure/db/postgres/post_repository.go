package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

// The id is drawn from the serial sequence inside the statement so the
// permalink is written together with the row, never patched afterwards.
const insertPostQuery = `WITH next AS (SELECT nextval(pg_get_serial_sequence('posts', 'id')) AS id)
INSERT INTO posts (id, subject, content, created, permalink)
SELECT id, $1, $2, $3, id::text FROM next
RETURNING id, subject, content, created, permalink`

const selectPostByIDQuery = `SELECT id, subject, content, created, permalink FROM posts WHERE id = $1`

const selectRecentPostsQuery = `SELECT id, subject, content, created, permalink FROM posts
ORDER BY created DESC, id DESC
LIMIT $1`

type PostRepository struct {
	db sqlx.ExtContext
}

func NewPostRepository(db sqlx.ExtContext) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	var post domain.Post
	if err := sqlx.GetContext(ctx, r.db, &post, insertPostQuery, p.Subject, p.Content, p.Created.UTC()); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	post.Created = post.Created.UTC()
	return &post, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	var post domain.Post
	if err := sqlx.GetContext(ctx, r.db, &post, selectPostByIDQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	post.Created = post.Created.UTC()
	return &post, nil
}

func (r *PostRepository) Recent(ctx context.Context, limit int) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, limit)
	if err := sqlx.SelectContext(ctx, r.db, &posts, selectRecentPostsQuery, limit); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	for i := range posts {
		posts[i].Created = posts[i].Created.UTC()
	}
	return posts, nil
}
