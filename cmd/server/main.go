package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/99minutos/secure-blog/internal/api"
	"github.com/99minutos/secure-blog/internal/api/handler"
	"github.com/99minutos/secure-blog/internal/api/middleware"
	"github.com/99minutos/secure-blog/internal/core/ports"
	"github.com/99minutos/secure-blog/internal/core/service"
	"github.com/99minutos/secure-blog/internal/infrastructure/db/memory"
	"github.com/99minutos/secure-blog/internal/infrastructure/db/mongo"
	"github.com/99minutos/secure-blog/internal/infrastructure/db/postgres"
	"github.com/99minutos/secure-blog/internal/infrastructure/db/redis"
	"github.com/99minutos/secure-blog/internal/pkg/config"
	"github.com/99minutos/secure-blog/internal/pkg/credential"
	"github.com/99minutos/secure-blog/pkg/logger"
)

// store is what the server needs from either database backend.
type store struct {
	posts       ports.PostRepository
	credentials ports.CredentialRepository
	ping        func(context.Context) error
	close       func(context.Context) error
}

func (s *store) Ping(ctx context.Context) error { return s.ping(ctx) }

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "secure-blog",
	})
	for _, name := range cfg.InsecureDefaults() {
		log.Warn().Str("var", name).Msg("using insecure development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		stop()
		log.Fatal().Err(err).Msg("server exited")
	}
}

// Seams for tests.
var (
	openStoreFn = openStore
	openCacheFn = openCache
)

// run wires the dependencies and serves until ctx is cancelled. Everything
// opened here is closed before it returns, on every path.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	st, err := openStoreFn(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	cache, closeCache, err := openCacheFn(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", cfg.CacheDriver, err)
	}
	defer closeCache()

	codec, err := credential.NewCodec([]byte(cfg.Codec.Secret))
	if err != nil {
		return fmt.Errorf("credential codec: %w", err)
	}

	renderer, err := api.NewRenderer()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	e := api.NewRouter(api.Deps{
		Blog:     service.NewBlogService(st.posts, cache, log.With().Str("component", "blog").Logger()),
		Auth:     service.NewAuthService(st.credentials, codec, log.With().Str("component", "auth").Logger()),
		Sessions: middleware.NewSessionManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.CookieSecure),
		Renderer: renderer,
		Checks: map[string]handler.Pinger{
			cfg.StoreDriver: st,
			cfg.CacheDriver: cache,
		},
		Logger: log,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Str("cache", cfg.CacheDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("serve: %w", err)
		}
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	return runErr
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pg, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		return &store{posts: pg.Posts, credentials: pg.Credentials, ping: pg.Ping, close: pg.Close}, nil
	default:
		mg, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return &store{posts: mg.Posts, credentials: mg.Credentials, ping: mg.Ping, close: mg.Close}, nil
	}
}

func openCache(ctx context.Context, cfg *config.Config) (ports.Cache, func(), error) {
	if cfg.CacheDriver == config.CacheMemory {
		c, err := memory.NewCache(0)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
	client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, nil, err
	}
	return redis.NewCache(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
}
