package templatecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// Filter selects which template schemas a Provider returns.
type Filter string

const (
	FilterV1  Filter = "v1"
	FilterV2  Filter = "v2"
	FilterAll Filter = "all"
)

// ParseFilter accepts "v1", "v2" or "all" in any case.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(s)); f {
	case FilterV1, FilterV2, FilterAll:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown template filter %q (want v1, v2 or all)", s)
	}
}

// Provider is the template surface used by commands.
type Provider struct {
	cache  *Cache
	locale string
	log    *slog.Logger
}

// NewProvider returns a Provider resolving display strings for locale.
func NewProvider(cache *Cache, locale string) *Provider {
	return &Provider{cache: cache, locale: locale, log: cache.log}
}

// GetFunctionTemplates returns the templates for language and runtime
// version. FilterAll concatenates v1 then v2; when only one schema can be
// acquired its templates are returned and the other failure is logged.
func (p *Provider) GetFunctionTemplates(ctx context.Context, language, runtimeVersion string, filter Filter) (*templates.TemplateSet, error) {
	switch filter {
	case FilterV1:
		return p.cache.Templates(ctx, p.request(language, runtimeVersion, templates.SchemaV1))
	case FilterV2:
		return p.cache.Templates(ctx, p.request(language, runtimeVersion, templates.SchemaV2))
	case FilterAll, "":
	default:
		return nil, fmt.Errorf("unknown template filter %q", filter)
	}

	v1, v1Err := p.cache.Templates(ctx, p.request(language, runtimeVersion, templates.SchemaV1))
	v2, v2Err := p.cache.Templates(ctx, p.request(language, runtimeVersion, templates.SchemaV2))
	switch {
	case v1Err != nil && v2Err != nil:
		return nil, errors.Join(v1Err, v2Err)
	case v1Err != nil:
		p.log.Warn("v1 templates unavailable", "language", language, "error", v1Err)
		return v2, nil
	case v2Err != nil:
		p.log.Warn("v2 templates unavailable", "language", language, "error", v2Err)
		return v1, nil
	}
	return merge(v1, v2), nil
}

// ClearTemplateCache removes the persisted templates of both schemas.
func (p *Provider) ClearTemplateCache(ctx context.Context, language, runtimeVersion string) error {
	for _, schema := range []templates.SchemaVersion{templates.SchemaV1, templates.SchemaV2} {
		if err := p.cache.Clear(ctx, p.request(language, runtimeVersion, schema)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) request(language, runtimeVersion string, schema templates.SchemaVersion) Request {
	return Request{
		Language:       language,
		RuntimeVersion: runtimeVersion,
		Schema:         schema,
		Locale:         p.locale,
	}
}

func merge(v1, v2 *templates.TemplateSet) *templates.TemplateSet {
	out := &templates.TemplateSet{
		BindingTemplates: v1.BindingTemplates,
		Skipped:          v1.Skipped + v2.Skipped,
		Source:           v1.Source,
	}
	if v1.Source != v2.Source {
		out.Source = v1.Source + "+" + v2.Source
	}
	out.FunctionTemplates = append(out.FunctionTemplates, v1.FunctionTemplates...)
	out.FunctionTemplates = append(out.FunctionTemplates, v2.FunctionTemplates...)
	return out
}
