package ports

import (
	"context"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

// PostRepository is the append-only post store.
type PostRepository interface {
	// Create inserts the post, assigning ID and Permalink before the first
	// successful write, and returns the stored post.
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// FindByID returns domain.ErrPostNotFound when no post has the id.
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	// Recent returns up to limit posts ordered by creation time, newest first.
	// Ties are broken by id, highest first.
	Recent(ctx context.Context, limit int) ([]domain.Post, error)
}
