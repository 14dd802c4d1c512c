package ports

import (
	"context"
	"time"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

// TopTenResult is the front-page listing together with the time the listing
// was read from the store.
type TopTenResult struct {
	Posts    []domain.Post
	CachedAt time.Time
}

// PostResult is a single post together with the time it was read from the store.
type PostResult struct {
	Post     domain.Post
	CachedAt time.Time
}

// PublishInput carries the fields of a new post.
type PublishInput struct {
	Subject string
	Content string
}

// BlogService defines the read-through cached post operations.
type BlogService interface {
	TopTen(ctx context.Context, forceRefresh bool) (*TopTenResult, error)
	// Permalink returns domain.ErrPostNotFound when no post has the id.
	Permalink(ctx context.Context, id int64) (*PostResult, error)
	// Publish stores the post and refreshes the cached listing.
	Publish(ctx context.Context, input PublishInput) (*domain.Post, error)
	Flush(ctx context.Context) error
}
