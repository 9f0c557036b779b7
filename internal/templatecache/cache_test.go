package templatecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/funcscaffold/funcscaffold/internal/backup"
	"github.com/funcscaffold/funcscaffold/internal/store"
	"github.com/funcscaffold/funcscaffold/internal/templates"
)

var errFeedDown = errors.New("feed unreachable: connection refused")

type fakeFeed struct {
	latest      string
	latestErr   error
	bundles     map[templates.SchemaVersion]*templates.Bundle
	downloadErr error
	// gate, when set, blocks LatestVersion until closed.
	gate chan struct{}

	latestCalls   int32
	downloadCalls int32
}

func (f *fakeFeed) LatestVersion(ctx context.Context, runtimeVersion string) (string, error) {
	atomic.AddInt32(&f.latestCalls, 1)
	if f.gate != nil {
		<-f.gate
	}
	return f.latest, f.latestErr
}

func (f *fakeFeed) Download(ctx context.Context, version string, schema templates.SchemaVersion) (*templates.Bundle, error) {
	atomic.AddInt32(&f.downloadCalls, 1)
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	b, ok := f.bundles[schema]
	if !ok {
		return nil, fmt.Errorf("no %s bundle", schema)
	}
	return b, nil
}

type fakeBackup struct {
	bundle *templates.Bundle
	err    error
}

func (b *fakeBackup) Load(schema templates.SchemaVersion, runtimeVersion string) (*templates.Bundle, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.bundle, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func embeddedBundle(t *testing.T, schema templates.SchemaVersion, version string) *templates.Bundle {
	t.Helper()
	b, err := backup.Embedded().Load(schema, "~4")
	if err != nil {
		t.Fatalf("loading embedded bundle: %v", err)
	}
	b.Version = version
	return b
}

// singleTemplateBundle is distinguishable from the embedded bundle.
func singleTemplateBundle(version string) *templates.Bundle {
	return &templates.Bundle{
		Schema:  templates.SchemaV1,
		Version: version,
		Documents: map[string][]byte{
			templates.DocTemplates: []byte(`[{"id": "Cached-JavaScript", "metadata": {"name": "Cached", "language": "JavaScript"}, "files": {"index.js": ""}}]`),
		},
	}
}

// summarize renders the parts of a set that distinguish one source from
// another.
func summarize(set *templates.TemplateSet) []string {
	var out []string
	for _, tmpl := range set.FunctionTemplates {
		line := fmt.Sprintf("%s|%s|%s|%s|%s", tmpl.ID, tmpl.Name, tmpl.Language, tmpl.Description, tmpl.TriggerKind())
		for _, s := range tmpl.UserPromptedSettings {
			line += fmt.Sprintf("|%s=%s/%t", s.Name, s.DefaultValue, s.FunctionSpecific)
		}
		for _, j := range tmpl.Jobs {
			line += "|job:" + j.Name
		}
		files := make([]string, 0, len(tmpl.Files))
		for name := range tmpl.Files {
			files = append(files, name)
		}
		sort.Strings(files)
		line += "|" + strings.Join(files, ",")
		out = append(out, line)
	}
	return out
}

func directParse(t *testing.T, b *templates.Bundle, language string) []string {
	t.Helper()
	set, err := templates.ParseBundle(b, templates.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("direct parse: %v", err)
	}
	return summarize(templates.FilterByLanguage(set, language))
}

func seed(t *testing.T, st store.Store, req Request, b *templates.Bundle) {
	t.Helper()
	c := New(st, &fakeFeed{}, &fakeBackup{}, WithLogger(quietLogger()))
	keys, err := req.keys()
	if err != nil {
		t.Fatal(err)
	}
	c.persist(context.Background(), keys, b)
}

func equalSummaries(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("template set mismatch\n got: %v\nwant: %v", got, want)
	}
}

var jsRequest = Request{Language: "JavaScript", RuntimeVersion: "~4", Schema: templates.SchemaV1}

func TestTemplates_FeedTier(t *testing.T) {
	feedBundle := embeddedBundle(t, templates.SchemaV1, "4.1.0")
	st := store.NewMemoryStore()
	feed := &fakeFeed{latest: "4.1.0", bundles: map[templates.SchemaVersion]*templates.Bundle{templates.SchemaV1: feedBundle}}
	c := New(st, feed, &fakeBackup{err: errors.New("unused")}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceFeed {
		t.Errorf("Source = %q, want feed", set.Source)
	}
	equalSummaries(t, summarize(set), directParse(t, feedBundle, "JavaScript"))

	keys, _ := jsRequest.keys()
	if v, _, _ := st.Get(context.Background(), keys.version); v != "4.1.0" {
		t.Errorf("persisted version = %q, want 4.1.0", v)
	}
}

func TestTemplates_VersionMatchedCacheTier(t *testing.T) {
	st := store.NewMemoryStore()
	cached := singleTemplateBundle("4.1.0")
	seed(t, st, jsRequest, cached)

	feed := &fakeFeed{latest: "4.1.0", downloadErr: errors.New("must not download")}
	c := New(st, feed, &fakeBackup{err: errors.New("unused")}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceCache {
		t.Errorf("Source = %q, want cache", set.Source)
	}
	if n := atomic.LoadInt32(&feed.downloadCalls); n != 0 {
		t.Errorf("Download called %d times, want 0", n)
	}
	equalSummaries(t, summarize(set), directParse(t, cached, "JavaScript"))
}

func TestTemplates_OutdatedCacheDownloads(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, jsRequest, singleTemplateBundle("4.0.0"))

	feedBundle := embeddedBundle(t, templates.SchemaV1, "4.1.0")
	feed := &fakeFeed{latest: "4.1.0", bundles: map[templates.SchemaVersion]*templates.Bundle{templates.SchemaV1: feedBundle}}
	c := New(st, feed, &fakeBackup{}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceFeed {
		t.Errorf("Source = %q, want feed", set.Source)
	}
	equalSummaries(t, summarize(set), directParse(t, feedBundle, "JavaScript"))
}

func TestTemplates_CorruptCacheDownloads(t *testing.T) {
	st := store.NewMemoryStore()
	keys, _ := jsRequest.keys()
	st.Set(context.Background(), keys.version, "4.1.0")
	st.Set(context.Background(), keys.documents[templates.DocTemplates], "{not json")

	feedBundle := embeddedBundle(t, templates.SchemaV1, "4.1.0")
	feed := &fakeFeed{latest: "4.1.0", bundles: map[templates.SchemaVersion]*templates.Bundle{templates.SchemaV1: feedBundle}}
	c := New(st, feed, &fakeBackup{}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceFeed {
		t.Errorf("Source = %q, want feed", set.Source)
	}
}

func TestTemplates_StaleCacheTier(t *testing.T) {
	st := store.NewMemoryStore()
	cached := singleTemplateBundle("3.0.0")
	seed(t, st, jsRequest, cached)

	feed := &fakeFeed{latestErr: errFeedDown}
	c := New(st, feed, &fakeBackup{err: errors.New("unused")}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceStaleCache {
		t.Errorf("Source = %q, want stale-cache", set.Source)
	}
	equalSummaries(t, summarize(set), directParse(t, cached, "JavaScript"))
}

func TestTemplates_DownloadFailureFallsBackToStaleCache(t *testing.T) {
	st := store.NewMemoryStore()
	cached := singleTemplateBundle("4.0.0")
	seed(t, st, jsRequest, cached)

	feed := &fakeFeed{latest: "4.1.0", downloadErr: errFeedDown}
	c := New(st, feed, &fakeBackup{}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceStaleCache {
		t.Errorf("Source = %q, want stale-cache", set.Source)
	}
}

func TestTemplates_BackupTier(t *testing.T) {
	st := store.NewMemoryStore()
	backupBundle := embeddedBundle(t, templates.SchemaV1, "4.0.0")
	feed := &fakeFeed{latestErr: errFeedDown}
	c := New(st, feed, &fakeBackup{bundle: backupBundle}, WithLogger(quietLogger()))

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	if set.Source != templates.SourceBackup {
		t.Errorf("Source = %q, want backup", set.Source)
	}
	equalSummaries(t, summarize(set), directParse(t, backupBundle, "JavaScript"))

	keys, _ := jsRequest.keys()
	if v, _, _ := st.Get(context.Background(), keys.version); v != "4.0.0" {
		t.Errorf("persisted version = %q, want backup version 4.0.0", v)
	}
	if _, ok, _ := st.Get(context.Background(), keys.documents[templates.DocBindings]); !ok {
		t.Error("backup bindings not persisted")
	}

	// With the feed back at the backup's version the persisted copy is
	// reused.
	feed.latestErr, feed.latest = nil, "4.0.0"
	set, err = c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("second Templates() error: %v", err)
	}
	if set.Source != templates.SourceCache {
		t.Errorf("second Source = %q, want cache", set.Source)
	}
}

func TestTemplates_AllTiersFail(t *testing.T) {
	feed := &fakeFeed{latestErr: errFeedDown}
	backupErr := errors.New("no bundle for runtime")
	c := New(store.NewMemoryStore(), feed, &fakeBackup{err: backupErr}, WithLogger(quietLogger()))

	_, err := c.Templates(context.Background(), jsRequest)
	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("err = %v, want *AcquisitionError", err)
	}
	if !errors.Is(err, errFeedDown) {
		t.Errorf("error does not wrap the live feed error: %v", err)
	}
	if !strings.Contains(err.Error(), errFeedDown.Error()) {
		t.Errorf("message %q does not carry the feed error", err.Error())
	}
	if len(acqErr.Attempts) != 3 {
		t.Fatalf("Attempts = %d, want 3", len(acqErr.Attempts))
	}
	wantSources := []templates.Source{templates.SourceFeed, templates.SourceStaleCache, templates.SourceBackup}
	for i, a := range acqErr.Attempts {
		if a.Source != wantSources[i] {
			t.Errorf("Attempts[%d].Source = %q, want %q", i, a.Source, wantSources[i])
		}
	}
	if !errors.Is(acqErr.Attempts[2].Err, backupErr) {
		t.Errorf("backup attempt error = %v", acqErr.Attempts[2].Err)
	}
}

func TestTemplates_EmptyBackupIsAFailure(t *testing.T) {
	feed := &fakeFeed{latestErr: errFeedDown}
	empty := &templates.Bundle{Schema: templates.SchemaV1, Version: "4.0.0", Documents: map[string][]byte{
		templates.DocTemplates: []byte(`[]`),
	}}
	c := New(store.NewMemoryStore(), feed, &fakeBackup{bundle: empty}, WithLogger(quietLogger()))

	_, err := c.Templates(context.Background(), jsRequest)
	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("err = %v, want *AcquisitionError", err)
	}
	if !errors.Is(acqErr.Attempts[2].Err, templates.ErrNoTemplates) {
		t.Errorf("backup attempt error = %v, want ErrNoTemplates", acqErr.Attempts[2].Err)
	}
}

func TestTemplates_ConcurrentCallersShareOneFetch(t *testing.T) {
	feedBundle := embeddedBundle(t, templates.SchemaV1, "4.1.0")
	feed := &fakeFeed{
		latest:  "4.1.0",
		bundles: map[templates.SchemaVersion]*templates.Bundle{templates.SchemaV1: feedBundle},
		gate:    make(chan struct{}),
	}
	c := New(store.NewMemoryStore(), feed, &fakeBackup{}, WithLogger(quietLogger()))

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := c.Templates(context.Background(), jsRequest)
			if err == nil && len(set.FunctionTemplates) == 0 {
				err = errors.New("empty set")
			}
			errs <- err
		}()
	}

	// Give every caller time to join the in-flight acquisition.
	time.Sleep(100 * time.Millisecond)
	close(feed.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("caller error: %v", err)
		}
	}
	if n := atomic.LoadInt32(&feed.latestCalls); n != 1 {
		t.Errorf("LatestVersion called %d times, want 1", n)
	}
	if n := atomic.LoadInt32(&feed.downloadCalls); n != 1 {
		t.Errorf("Download called %d times, want 1", n)
	}
}

func TestTemplates_FailureFreesSlot(t *testing.T) {
	feed := &fakeFeed{latestErr: errFeedDown}
	bk := &fakeBackup{err: errors.New("no backup")}
	c := New(store.NewMemoryStore(), feed, bk, WithLogger(quietLogger()))

	if _, err := c.Templates(context.Background(), jsRequest); err == nil {
		t.Fatal("expected first call to fail")
	}

	feed.latestErr = nil
	feed.latest = "4.1.0"
	feed.bundles = map[templates.SchemaVersion]*templates.Bundle{templates.SchemaV1: embeddedBundle(t, templates.SchemaV1, "4.1.0")}

	set, err := c.Templates(context.Background(), jsRequest)
	if err != nil {
		t.Fatalf("second call error: %v", err)
	}
	if set.Source != templates.SourceFeed {
		t.Errorf("Source = %q, want feed", set.Source)
	}
}

func TestTemplates_CallerContextCancelled(t *testing.T) {
	feed := &fakeFeed{latest: "4.1.0", gate: make(chan struct{})}
	c := New(store.NewMemoryStore(), feed, &fakeBackup{err: errors.New("none")}, WithLogger(quietLogger()))
	defer close(feed.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Templates(ctx, jsRequest); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTemplates_FiltersByLanguage(t *testing.T) {
	feedBundle := embeddedBundle(t, templates.SchemaV1, "4.1.0")
	feed := &fakeFeed{latest: "4.1.0", bundles: map[templates.SchemaVersion]*templates.Bundle{templates.SchemaV1: feedBundle}}
	c := New(store.NewMemoryStore(), feed, &fakeBackup{}, WithLogger(quietLogger()))

	for _, lang := range []string{"JavaScript", "c#script"} {
		req := jsRequest
		req.Language = lang
		set, err := c.Templates(context.Background(), req)
		if err != nil {
			t.Fatalf("Templates(%s) error: %v", lang, err)
		}
		if len(set.FunctionTemplates) == 0 {
			t.Errorf("no templates for %s", lang)
		}
		for _, tmpl := range set.FunctionTemplates {
			if !strings.EqualFold(tmpl.Language, lang) {
				t.Errorf("template %s has language %s, want %s", tmpl.ID, tmpl.Language, lang)
			}
		}
	}
}

func TestClear(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, jsRequest, embeddedBundle(t, templates.SchemaV1, "4.1.0"))
	other := Request{Language: "Python", RuntimeVersion: "~4", Schema: templates.SchemaV2}
	seed(t, st, other, embeddedBundle(t, templates.SchemaV2, "4.1.0"))

	c := New(st, &fakeFeed{}, &fakeBackup{}, WithLogger(quietLogger()))
	if err := c.Clear(context.Background(), jsRequest); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	for _, k := range st.Keys() {
		if !strings.HasSuffix(k, ".v2") {
			t.Errorf("key %q survived Clear", k)
		}
	}
	if len(st.Keys()) != 4 {
		t.Errorf("v2 keys = %v, want 4 untouched", st.Keys())
	}
}
