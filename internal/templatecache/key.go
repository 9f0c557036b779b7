package templatecache

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// Logical keys of the persisted template documents.
const (
	KeyTemplatesVersion = "FunctionTemplatesVersion"
	KeyTemplates        = "FunctionTemplates"
	KeyBindings         = "FunctionTemplateBindings"
	KeyUserPrompts      = "FunctionTemplateUserPrompts"
	KeyResources        = "FunctionTemplateResources"
)

// Template types.
const (
	TemplateTypeScript = "Script"
	TemplateTypeDotnet = "Dotnet"
)

// Dimension defaults. A dimension equal to its default is left out of the
// composed key so that keys written before the dimension existed still
// resolve.
const (
	DefaultVersion      = "~1"
	DefaultTemplateType = TemplateTypeScript
	DefaultLocale       = "en"
	DefaultSchema       = templates.SchemaV1
)

var (
	logicalKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	versionPattern    = regexp.MustCompile(`^~\d+$`)
	defaultLocale     = regexp.MustCompile(`(?i)^en(-us)?$`)
)

var templateTypes = []string{TemplateTypeScript, TemplateTypeDotnet}

// documentKeys maps bundle document names to logical keys.
var documentKeys = map[string]string{
	templates.DocTemplates:   KeyTemplates,
	templates.DocBindings:    KeyBindings,
	templates.DocUserPrompts: KeyUserPrompts,
	templates.DocResources:   KeyResources,
}

// KeyParams are the dimensions of a cache key. Empty fields take their
// defaults.
type KeyParams struct {
	// Language only contributes to v2 keys, whose documents are published
	// per language.
	Language     string
	Version      string
	TemplateType string
	Locale       string
	Schema       templates.SchemaVersion
}

func (p KeyParams) withDefaults() KeyParams {
	if p.Version == "" {
		p.Version = DefaultVersion
	}
	if p.TemplateType == "" {
		p.TemplateType = DefaultTemplateType
	}
	if p.Locale == "" || defaultLocale.MatchString(p.Locale) {
		p.Locale = DefaultLocale
	}
	if p.Schema == "" {
		p.Schema = DefaultSchema
	}
	return p
}

// ComposeKey builds <logical><suffix>.<version>.<templateType>.<locale>.<schema>,
// appending each dimension only when it differs from its default. The suffix
// is "-<language>" for v2. Every dimension is validated so that distinct
// parameters never produce the same key; ParseKey inverts the composition.
func ComposeKey(logical string, p KeyParams) (string, error) {
	p = p.withDefaults()
	if err := p.validate(logical); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(logical)
	if p.Schema == templates.SchemaV2 {
		b.WriteString("-")
		b.WriteString(strings.ToLower(p.Language))
	}
	if p.Version != DefaultVersion {
		b.WriteString("." + p.Version)
	}
	if p.TemplateType != DefaultTemplateType {
		b.WriteString("." + p.TemplateType)
	}
	if p.Locale != DefaultLocale {
		b.WriteString("." + p.Locale)
	}
	if p.Schema != DefaultSchema {
		b.WriteString("." + string(p.Schema))
	}
	return b.String(), nil
}

func (p KeyParams) validate(logical string) error {
	if !logicalKeyPattern.MatchString(logical) {
		return fmt.Errorf("invalid logical cache key %q", logical)
	}
	if !versionPattern.MatchString(p.Version) {
		return fmt.Errorf("invalid runtime version %q (want ~N)", p.Version)
	}
	if !isTemplateType(p.TemplateType) {
		return fmt.Errorf("invalid template type %q", p.TemplateType)
	}
	if _, err := language.Parse(p.Locale); err != nil || strings.Contains(p.Locale, ".") || looksLikeTemplateType(p.Locale) {
		return fmt.Errorf("invalid locale %q", p.Locale)
	}
	if p.Schema != templates.SchemaV1 && p.Schema != templates.SchemaV2 {
		return fmt.Errorf("invalid template schema %q", p.Schema)
	}
	if p.Schema == templates.SchemaV2 {
		if p.Language == "" || strings.Contains(p.Language, ".") {
			return fmt.Errorf("invalid template language %q", p.Language)
		}
	}
	return nil
}

// ParseKey splits a composed key back into its logical key and dimensions.
// The language comes back lower-cased.
func ParseKey(key string) (string, KeyParams, error) {
	segments := strings.Split(key, ".")
	head := segments[0]
	p := KeyParams{
		Version:      DefaultVersion,
		TemplateType: DefaultTemplateType,
		Locale:       DefaultLocale,
		Schema:       DefaultSchema,
	}

	logical := head
	var suffix string
	hasSuffix := false
	if i := strings.Index(head, "-"); i >= 0 {
		logical, suffix, hasSuffix = head[:i], head[i+1:], true
	}

	// Each dimension may appear at most once and only after the ones
	// before it.
	stage := 0
	for _, seg := range segments[1:] {
		switch {
		case stage < 1 && strings.HasPrefix(seg, "~"):
			p.Version, stage = seg, 1
		case stage < 2 && isTemplateType(seg):
			p.TemplateType, stage = seg, 2
		case stage < 4 && seg == string(templates.SchemaV2):
			p.Schema, stage = templates.SchemaV2, 4
		case stage < 3:
			p.Locale, stage = seg, 3
		default:
			return "", KeyParams{}, fmt.Errorf("malformed cache key %q", key)
		}
	}

	if hasSuffix != (p.Schema == templates.SchemaV2) {
		return "", KeyParams{}, fmt.Errorf("malformed cache key %q", key)
	}
	p.Language = suffix
	if err := p.validate(logical); err != nil {
		return "", KeyParams{}, fmt.Errorf("malformed cache key %q: %w", key, err)
	}
	return logical, p, nil
}

func isTemplateType(s string) bool {
	for _, t := range templateTypes {
		if s == t {
			return true
		}
	}
	return false
}

func looksLikeTemplateType(s string) bool {
	for _, t := range templateTypes {
		if strings.EqualFold(s, t) {
			return true
		}
	}
	return false
}
