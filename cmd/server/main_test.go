package main

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/secure-blog/internal/core/ports"
	"github.com/99minutos/secure-blog/internal/pkg/config"
)

func TestRun_ClosesStoreWhenCacheFails(t *testing.T) {
	origStore, origCache := openStoreFn, openCacheFn
	defer func() { openStoreFn, openCacheFn = origStore, origCache }()

	closed := false
	openStoreFn = func(context.Context, *config.Config) (*store, error) {
		return &store{
			ping:  func(context.Context) error { return nil },
			close: func(context.Context) error { closed = true; return nil },
		}, nil
	}
	cacheErr := errors.New("redis ping: connection refused")
	openCacheFn = func(context.Context, *config.Config) (ports.Cache, func(), error) {
		return nil, nil, cacheErr
	}

	cfg := &config.Config{StoreDriver: config.StoreMongo, CacheDriver: config.CacheRedis}
	err := run(context.Background(), cfg, zerolog.Nop())
	if !errors.Is(err, cacheErr) {
		t.Fatalf("expected cache error, got %v", err)
	}
	if !closed {
		t.Fatalf("store was not closed after a later startup failure")
	}
}

func TestRun_StoreFailureIsReturned(t *testing.T) {
	origStore := openStoreFn
	defer func() { openStoreFn = origStore }()

	storeErr := errors.New("mongo ping: timeout")
	openStoreFn = func(context.Context, *config.Config) (*store, error) {
		return nil, storeErr
	}

	cfg := &config.Config{StoreDriver: config.StoreMongo, CacheDriver: config.CacheMemory}
	if err := run(context.Background(), cfg, zerolog.Nop()); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
