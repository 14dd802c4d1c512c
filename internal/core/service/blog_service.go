package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/secure-blog/internal/core/domain"
	"github.com/99minutos/secure-blog/internal/core/ports"
	"github.com/99minutos/secure-blog/internal/pkg/metrics"
)

const (
	topListingKey = "top"

	kindTop  = "top"
	kindPost = "post"
)

// BlogService serves posts through a read-through cache in front of the post
// store. A failing cache never fails a request: the error is logged and the
// store is queried directly.
type BlogService struct {
	repo   ports.PostRepository
	cache  ports.Cache
	logger zerolog.Logger
	now    func() time.Time
}

func NewBlogService(repo ports.PostRepository, cache ports.Cache, logger zerolog.Logger) *BlogService {
	return &BlogService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func postKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// TopTen returns the ten most recent posts, newest first. With forceRefresh
// the cached listing is ignored and rebuilt from the store.
func (s *BlogService) TopTen(ctx context.Context, forceRefresh bool) (*ports.TopTenResult, error) {
	if !forceRefresh {
		if posts, at, ok := lookup[[]domain.Post](ctx, s, kindTop, topListingKey); ok {
			return &ports.TopTenResult{Posts: posts, CachedAt: at}, nil
		}
	}

	s.logger.Debug().Str("key", topListingKey).Bool("forced", forceRefresh).Msg("store query")
	metrics.StoreQueriesTotal.WithLabelValues("recent").Inc()

	posts, err := s.repo.Recent(ctx, domain.TopListingSize)
	if err != nil {
		return nil, fmt.Errorf("top ten: %w", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	at := s.now().UTC()
	remember(ctx, s, kindTop, topListingKey, posts, at)
	return &ports.TopTenResult{Posts: posts, CachedAt: at}, nil
}

// Permalink returns the post with the given id. Posts never change once
// stored, so a cached copy is never invalidated. A missing post is not cached.
func (s *BlogService) Permalink(ctx context.Context, id int64) (*ports.PostResult, error) {
	key := postKey(id)
	if post, at, ok := lookup[domain.Post](ctx, s, kindPost, key); ok {
		return &ports.PostResult{Post: post, CachedAt: at}, nil
	}

	s.logger.Debug().Str("key", key).Msg("store query")
	metrics.StoreQueriesTotal.WithLabelValues("by_id").Inc()

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("permalink %d: %w", id, err)
	}

	at := s.now().UTC()
	remember(ctx, s, kindPost, key, *post, at)
	return &ports.PostResult{Post: *post, CachedAt: at}, nil
}

// Publish stores a new post and forces a refresh of the cached listing so
// the next read includes it.
func (s *BlogService) Publish(ctx context.Context, input ports.PublishInput) (*domain.Post, error) {
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, domain.ErrInvalidPost
	}

	created, err := s.repo.Create(ctx, &domain.Post{
		Subject: input.Subject,
		Content: input.Content,
		Created: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create post")
		return nil, fmt.Errorf("publish: %w", err)
	}

	metrics.PostsPublishedTotal.Inc()
	s.logger.Info().Int64("post_id", created.ID).Str("permalink", created.Permalink).Msg("post published")

	// The post is committed at this point; a failed refresh leaves the listing
	// stale until the next forced refresh or flush, it does not undo the publish.
	if _, err := s.TopTen(ctx, true); err != nil {
		s.logger.Error().Err(err).Int64("post_id", created.ID).Msg("listing refresh after publish failed")
	}
	remember(ctx, s, kindPost, postKey(created.ID), *created, s.now().UTC())

	return created, nil
}

// Flush drops every cache entry.
func (s *BlogService) Flush(ctx context.Context) error {
	if err := s.cache.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	metrics.CacheFlushesTotal.Inc()
	s.logger.Info().Msg("cache flushed")
	return nil
}

func lookup[T any](ctx context.Context, s *BlogService, kind, key string) (T, time.Time, bool) {
	value, at, found, err := getCached[T](ctx, s.cache, key)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(kind, "error").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to store")
	case found:
		metrics.CacheLookupsTotal.WithLabelValues(kind, "hit").Inc()
	default:
		metrics.CacheLookupsTotal.WithLabelValues(kind, "miss").Inc()
	}
	return value, at, found
}

func remember[T any](ctx context.Context, s *BlogService, kind, key string, value T, at time.Time) {
	if err := putCached(ctx, s.cache, key, value, at); err != nil {
		metrics.CacheWriteErrorsTotal.WithLabelValues(kind).Inc()
		if !errors.Is(err, domain.ErrCacheUnavailable) {
			s.logger.Error().Err(err).Str("key", key).Msg("cache encode failed")
			return
		}
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
