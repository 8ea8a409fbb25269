package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/jonathan/adaptive-tutor/internal/cache"
	"github.com/jonathan/adaptive-tutor/internal/config"
	"github.com/jonathan/adaptive-tutor/internal/db"
	"github.com/jonathan/adaptive-tutor/internal/llm"
	"github.com/jonathan/adaptive-tutor/internal/metrics"
	"github.com/jonathan/adaptive-tutor/internal/tutor"
)

// app holds the engine and the resources it owns
type app struct {
	engine  *tutor.Engine
	metrics *metrics.Manager
	closers []func()
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp connects storage, the optional theme cache and the generation backend
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{metrics: metrics.NewManager()}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (TUTOR_DATABASE__URL or DATABASE_URL)")
	}
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, database.Close)

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	opts := []tutor.Option{
		tutor.WithMetrics(a.metrics),
		tutor.WithLogger(slog.Default()),
	}

	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			// themes still work uncached
			log.Printf("Warning: theme cache disabled: %v", err)
		} else {
			a.closers = append(a.closers, func() { _ = client.Close() })
			opts = append(opts, tutor.WithThemeCache(cache.NewThemeCache(client, cfg.Redis.ThemeTTL, cfg.Redis.Namespace)))
		}
	}

	client, err := llm.NewClient(ctx, cfg.LLMSettings())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	a.engine = tutor.New(client, database, database, opts...)
	return a, nil
}
