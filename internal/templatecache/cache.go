package templatecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/funcscaffold/funcscaffold/internal/store"
	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// Feed is the live template source.
type Feed interface {
	LatestVersion(ctx context.Context, runtimeVersion string) (string, error)
	Download(ctx context.Context, version string, schema templates.SchemaVersion) (*templates.Bundle, error)
}

// Backup is the last-resort template source.
type Backup interface {
	Load(schema templates.SchemaVersion, runtimeVersion string) (*templates.Bundle, error)
}

var errNotCached = errors.New("no cached templates")

// Request identifies one template set.
type Request struct {
	Language       string
	RuntimeVersion string
	Schema         templates.SchemaVersion
	Locale         string
	TemplateType   string
}

func (r Request) keyParams() KeyParams {
	return KeyParams{
		Language:     r.Language,
		Version:      r.RuntimeVersion,
		TemplateType: r.TemplateType,
		Locale:       r.Locale,
		Schema:       r.Schema,
	}.withDefaults()
}

// requestKeys are the composed store keys for one request.
type requestKeys struct {
	version   string
	documents map[string]string
}

func (r Request) keys() (*requestKeys, error) {
	p := r.keyParams()
	version, err := ComposeKey(KeyTemplatesVersion, p)
	if err != nil {
		return nil, err
	}
	k := &requestKeys{version: version, documents: make(map[string]string)}
	for _, name := range templates.DocumentNames(p.Schema) {
		key, err := ComposeKey(documentKeys[name], p)
		if err != nil {
			return nil, err
		}
		k.documents[name] = key
	}
	return k, nil
}

func (k *requestKeys) all() []string {
	keys := []string{k.version}
	for _, key := range k.documents {
		keys = append(keys, key)
	}
	return keys
}

// Cache serves template sets through the feed, store and backup tiers.
type Cache struct {
	store  store.Store
	feed   Feed
	backup Backup
	log    *slog.Logger
	group  singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for tier fallbacks and discarded items.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.log = l
	}
}

// New returns a Cache. One Cache should be shared by every caller in a
// process so that concurrent requests are coalesced.
func New(st store.Store, feed Feed, backup Backup, opts ...Option) *Cache {
	c := &Cache{
		store:  st,
		feed:   feed,
		backup: backup,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Templates returns the template set for req, keeping only templates in
// req.Language. Callers waiting on a shared acquisition stop waiting when
// their ctx ends; the acquisition itself carries on for the others.
func (c *Cache) Templates(ctx context.Context, req Request) (*templates.TemplateSet, error) {
	p := req.keyParams()
	req.Schema, req.RuntimeVersion = p.Schema, p.Version
	keys, err := req.keys()
	if err != nil {
		return nil, err
	}

	flight := keys.version + "|" + strings.ToLower(req.Language)
	ch := c.group.DoChan(flight, func() (any, error) {
		return c.acquire(context.WithoutCancel(ctx), req, keys)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return templates.FilterByLanguage(res.Val.(*templates.TemplateSet), req.Language), nil
	}
}

// Clear removes the persisted version marker and documents for req.
func (c *Cache) Clear(ctx context.Context, req Request) error {
	keys, err := req.keys()
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, keys.all()...); err != nil {
		return fmt.Errorf("clearing template cache: %w", err)
	}
	return nil
}

func (c *Cache) acquire(ctx context.Context, req Request, keys *requestKeys) (*templates.TemplateSet, error) {
	log := c.log.With("language", req.Language, "runtime", req.RuntimeVersion, "schema", req.Schema)
	var attempts []TierError

	set, liveErr := c.fromFeed(ctx, req, keys)
	if liveErr == nil {
		return set, nil
	}
	attempts = append(attempts, TierError{Source: templates.SourceFeed, Err: liveErr})
	log.Warn("template feed unavailable, trying cached templates", "error", liveErr)

	set, err := c.fromStaleCache(ctx, req, keys)
	if err == nil {
		return set, nil
	}
	attempts = append(attempts, TierError{Source: templates.SourceStaleCache, Err: err})
	log.Warn("cached templates unavailable, trying backup templates", "error", err)

	set, err = c.fromBackup(ctx, req, keys)
	if err == nil {
		return set, nil
	}
	attempts = append(attempts, TierError{Source: templates.SourceBackup, Err: err})
	log.Warn("backup templates unavailable", "error", err)

	return nil, &AcquisitionError{
		Language: req.Language,
		Schema:   req.Schema,
		Err:      liveErr,
		Attempts: attempts,
	}
}

// fromFeed serves the persisted copy when it matches the feed's latest
// version, and downloads otherwise.
func (c *Cache) fromFeed(ctx context.Context, req Request, keys *requestKeys) (*templates.TemplateSet, error) {
	latest, err := c.feed.LatestVersion(ctx, req.RuntimeVersion)
	if err != nil {
		return nil, fmt.Errorf("checking latest template version: %w", err)
	}

	cached, ok, err := c.store.Get(ctx, keys.version)
	if err != nil {
		c.log.Warn("reading cached template version", "key", keys.version, "error", err)
	}
	if ok && cached == latest {
		set, err := c.parseCached(ctx, req, keys)
		if err == nil {
			set.Source = templates.SourceCache
			return set, nil
		}
		c.log.Warn("cached templates unreadable, downloading", "version", latest, "error", err)
	}

	bundle, err := c.feed.Download(ctx, latest, req.Schema)
	if err != nil {
		return nil, fmt.Errorf("downloading templates %s: %w", latest, err)
	}
	set, err := c.parse(bundle, req)
	if err != nil {
		return nil, fmt.Errorf("parsing templates %s: %w", latest, err)
	}
	c.persist(ctx, keys, bundle)
	set.Source = templates.SourceFeed
	return set, nil
}

func (c *Cache) fromStaleCache(ctx context.Context, req Request, keys *requestKeys) (*templates.TemplateSet, error) {
	set, err := c.parseCached(ctx, req, keys)
	if err != nil {
		return nil, err
	}
	set.Source = templates.SourceStaleCache
	return set, nil
}

func (c *Cache) fromBackup(ctx context.Context, req Request, keys *requestKeys) (*templates.TemplateSet, error) {
	bundle, err := c.backup.Load(req.Schema, req.RuntimeVersion)
	if err != nil {
		return nil, err
	}
	set, err := c.parse(bundle, req)
	if err != nil {
		return nil, fmt.Errorf("parsing backup templates %s: %w", bundle.Version, err)
	}
	c.persist(ctx, keys, bundle)
	set.Source = templates.SourceBackup
	return set, nil
}

func (c *Cache) parseCached(ctx context.Context, req Request, keys *requestKeys) (*templates.TemplateSet, error) {
	bundle := &templates.Bundle{Schema: req.Schema, Documents: make(map[string][]byte)}
	for name, key := range keys.documents {
		value, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading cached %s: %w", name, err)
		}
		if ok {
			bundle.Documents[name] = []byte(value)
		}
	}
	if _, ok := bundle.Documents[templates.DocTemplates]; !ok {
		return nil, errNotCached
	}
	return c.parse(bundle, req)
}

func (c *Cache) parse(bundle *templates.Bundle, req Request) (*templates.TemplateSet, error) {
	opts := []templates.ParseOption{templates.WithLogger(c.log)}
	if req.Locale != "" {
		opts = append(opts, templates.WithLocale(req.Locale))
	}
	return templates.ParseBundle(bundle, opts...)
}

// persist writes the documents first and the version marker last, so an
// interrupted write never leaves a marker pointing at partial documents.
func (c *Cache) persist(ctx context.Context, keys *requestKeys, bundle *templates.Bundle) {
	for name, key := range keys.documents {
		data, ok := bundle.Documents[name]
		if !ok {
			if err := c.store.Delete(ctx, key); err != nil {
				c.log.Warn("clearing cached template document", "key", key, "error", err)
			}
			continue
		}
		if err := c.store.Set(ctx, key, string(data)); err != nil {
			c.log.Warn("caching template document", "key", key, "error", err)
			return
		}
	}
	if err := c.store.Set(ctx, keys.version, bundle.Version); err != nil {
		c.log.Warn("caching template version", "key", keys.version, "error", err)
	}
}
