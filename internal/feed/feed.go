package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/funcscaffold/funcscaffold/internal/branding"
	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// ErrNoRelease is returned when the feed has no release for a runtime.
var ErrNoRelease = errors.New("no matching release in feed")

// Document is the feed's top-level JSON shape.
type Document struct {
	Tags     map[string]Tag     `json:"tags"`
	Releases map[string]Release `json:"releases"`
}

// Tag points a runtime major version at a release.
type Tag struct {
	Release string `json:"release"`
}

// Release lists document URLs per template schema.
type Release struct {
	Templates map[templates.SchemaVersion]map[string]string `json:"templates"`
}

// Client fetches the feed and the documents it references.
type Client struct {
	feedURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout bounds each HTTP request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// New creates a Client for the feed at feedURL. An empty feedURL uses the
// branded default.
func New(feedURL string, opts ...Option) *Client {
	if feedURL == "" {
		feedURL = branding.FeedURL()
	}
	c := &Client{
		feedURL:    feedURL,
		httpClient: http.DefaultClient,
		userAgent:  branding.UserAgent(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the feed document URL.
func (c *Client) URL() string {
	return c.feedURL
}

// Feed downloads and decodes the feed document.
func (c *Client) Feed(ctx context.Context) (*Document, error) {
	body, err := c.get(ctx, c.feedURL)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing feed JSON: %w", err)
	}
	return &doc, nil
}

// LatestVersion returns the release version serving runtimeVersion ("~4").
func (c *Client) LatestVersion(ctx context.Context, runtimeVersion string) (string, error) {
	doc, err := c.Feed(ctx)
	if err != nil {
		return "", err
	}
	return doc.ReleaseFor(runtimeVersion)
}

// Download fetches every document of one schema for a release version.
func (c *Client) Download(ctx context.Context, version string, schema templates.SchemaVersion) (*templates.Bundle, error) {
	doc, err := c.Feed(ctx)
	if err != nil {
		return nil, err
	}
	release, ok := doc.Releases[version]
	if !ok {
		return nil, fmt.Errorf("release %s: %w", version, ErrNoRelease)
	}
	urls := release.Templates[schema]
	if len(urls) == 0 {
		return nil, fmt.Errorf("release %s has no %s templates", version, schema)
	}

	bundle := &templates.Bundle{
		Schema:    schema,
		Version:   version,
		Documents: make(map[string][]byte),
	}
	for _, name := range templates.DocumentNames(schema) {
		ref, ok := urls[name]
		if !ok || ref == "" {
			return nil, fmt.Errorf("release %s: %s templates missing %q document", version, schema, name)
		}
		target, err := c.resolve(ref)
		if err != nil {
			return nil, err
		}
		body, err := c.get(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", name, err)
		}
		bundle.Documents[name] = body
	}
	return bundle, nil
}

// resolve makes a document reference absolute against the feed URL.
func (c *Client) resolve(ref string) (string, error) {
	base, err := url.Parse(c.feedURL)
	if err != nil {
		return "", fmt.Errorf("parsing feed URL: %w", err)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing document URL %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()
	c.log.Debug("feed request", "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Message: "not found"}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Message: "rate limited, try again later"}
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// StatusError is a non-200 feed response.
type StatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "feed returned status %d for %s", e.StatusCode, e.URL)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}
