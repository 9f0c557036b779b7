package cli

import (
	"context"
	"log/slog"

	"github.com/funcscaffold/funcscaffold/internal/backup"
	"github.com/funcscaffold/funcscaffold/internal/branding"
	"github.com/funcscaffold/funcscaffold/internal/config"
	"github.com/funcscaffold/funcscaffold/internal/feed"
	"github.com/funcscaffold/funcscaffold/internal/store"
	"github.com/funcscaffold/funcscaffold/internal/templatecache"
)

// openStore returns the configured persistent store. An unreachable Redis
// server falls back to the file store so that templates stay available.
func openStore(ctx context.Context, settings *config.Settings) (store.Store, func()) {
	file := store.NewFileStore(settings.Store.Path)
	if settings.Store.Backend != config.BackendRedis {
		return file, func() {}
	}

	rs := store.NewRedisStore(store.RedisOptions{
		Address:  settings.Redis.Address,
		Password: settings.Redis.Password,
		DB:       settings.Redis.DB,
		Prefix:   branding.CLIName() + ":",
	})
	if err := rs.Ping(ctx); err != nil {
		slog.Warn("redis store unavailable, using file store", "address", settings.Redis.Address, "error", err)
		_ = rs.Close()
		return file, func() {}
	}
	return rs, func() { _ = rs.Close() }
}

// newProvider wires the feed, the store and the bundled backup into a
// template provider. The returned func releases the store.
func newProvider(ctx context.Context) (*templatecache.Provider, func(), error) {
	settings, err := config.Current()
	if err != nil {
		return nil, nil, err
	}
	st, closeStore := openStore(ctx, settings)
	client := feed.New(settings.Feed.URL,
		feed.WithTimeout(settings.Feed.Timeout),
		feed.WithLogger(slog.Default()),
	)
	cache := templatecache.New(st, client, backup.Embedded(), templatecache.WithLogger(slog.Default()))
	return templatecache.NewProvider(cache, settings.Locale), closeStore, nil
}

// schemaFilter resolves a --schema flag, falling back to the configured
// default.
func schemaFilter(flag string) (templatecache.Filter, error) {
	if flag == "" {
		flag = config.Get(config.KeyTemplatesSchema)
	}
	return templatecache.ParseFilter(flag)
}
