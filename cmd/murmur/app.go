package main

import (
	"context"
	"fmt"
	log "log/slog"

	"murmur/internal/apps"
	"murmur/internal/backend"
	"murmur/internal/command"
	"murmur/internal/config"
	"murmur/internal/conversation"
	"murmur/internal/executor"
	"murmur/internal/fsops"
	"murmur/internal/intent"
	"murmur/internal/proxy"
	"murmur/internal/router"
)

// app holds the wired pipeline shared by every subcommand.
type app struct {
	cfg      *config.Config
	registry *apps.Registry
	intents  *intent.Classifier
	backends *backend.Set
	router   *router.Router

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	registry, err := apps.Load(cfg.AppsFile)
	if err != nil {
		return nil, fmt.Errorf("application registry: %w", err)
	}
	a.registry = registry

	files, err := fsops.New(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	log.Debug("Filesystem base", "dir", files.Base())

	store, err := a.pendingStore()
	if err != nil {
		return nil, err
	}

	cores, err := backend.LoadCores(cfg.CoresFile)
	if err != nil {
		return nil, fmt.Errorf("cores: %w", err)
	}

	httpClient, err := proxy.NewSocksClient(cfg.SocksProxy)
	if err != nil {
		return nil, err
	}

	a.backends = backend.Build(ctx, cores, backend.Credentials{
		OpenAIKey:  cfg.OpenAIKey,
		GeminiKey:  cfg.GeminiKey,
		OllamaHost: cfg.OllamaHost,
		HTTPClient: httpClient,
	})
	a.closers = append(a.closers, func() error { a.backends.Close(); return nil })

	a.intents = intent.New(registry.Names())
	exec := executor.New(apps.NewLauncher(registry), files)
	conv := conversation.New(files, exec, store)

	a.router = router.New(a.intents, command.New(), conv, a.backends, router.WithTimeout(cfg.RouteTimeout))

	log.Info("Pipeline ready", "cores", a.backends.Names(), "apps", len(registry.Names()))
	return a, nil
}

func (a *app) pendingStore() (conversation.Store, error) {
	if a.cfg.RedisURL == "" {
		return conversation.NewMemoryStore(), nil
	}
	rs, err := conversation.NewRedisStore(a.cfg.RedisURL, a.cfg.PendingTTL)
	if err != nil {
		return nil, fmt.Errorf("pending store: %w", err)
	}
	a.closers = append(a.closers, rs.Close)
	log.Info("Pending actions stored in redis", "ttl", a.cfg.PendingTTL)
	return rs, nil
}

// watchApps keeps the registry and the intent classifier in sync with apps.json.
func (a *app) watchApps(ctx context.Context) {
	go func() {
		if err := a.registry.Watch(ctx, a.intents.SetApps); err != nil {
			log.Warn("Application registry watcher stopped", "err", err)
		}
	}()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("Shutdown step failed", "err", err)
		}
	}
}
