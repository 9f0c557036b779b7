package templates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// localeKey is the legacy dictionary name holding the already-selected
// locale's strings.
const localeKey = "lang"

var variableRef = regexp.MustCompile(`^\[variables\('(.*)'\)\]$`)

// Resources resolves "$key" references against a locale dictionary with an
// English fallback.
type Resources struct {
	en   map[string]string
	lang map[string]string
}

// NewResources builds Resources from explicit dictionaries.
func NewResources(en, lang map[string]string) *Resources {
	if en == nil {
		en = map[string]string{}
	}
	return &Resources{en: en, lang: lang}
}

// ParseResources decodes a resource document: a JSON object of dictionaries
// keyed by locale tag ("en", "de", "ja", …) or by the legacy "lang" name.
// The dictionary best matching locale becomes the primary lookup; "en" is
// always the fallback.
func ParseResources(data []byte, locale string) (*Resources, error) {
	if len(data) == 0 {
		return NewResources(nil, nil), nil
	}

	var dicts map[string]map[string]string
	if err := json.Unmarshal(data, &dicts); err != nil {
		return nil, fmt.Errorf("parsing resources: %w", err)
	}

	r := NewResources(dicts["en"], nil)
	if lang, ok := dicts[localeKey]; ok {
		r.lang = lang
		return r, nil
	}
	r.lang = dicts[matchLocale(dicts, locale)]
	return r, nil
}

// matchLocale picks the dictionary key that best serves locale, or "en".
func matchLocale(dicts map[string]map[string]string, locale string) string {
	want, err := language.Parse(locale)
	if err != nil || locale == "" {
		return "en"
	}

	keys := []string{"en"}
	supported := []language.Tag{language.English}
	for k := range dicts {
		if k == "en" || k == localeKey {
			continue
		}
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		keys = append(keys, k)
		supported = append(supported, tag)
	}

	_, idx, conf := language.NewMatcher(supported).Match(want)
	if conf == language.No {
		return "en"
	}
	return keys[idx]
}

// Lookup returns the localized string for key, falling back to English.
func (r *Resources) Lookup(key string) (string, bool) {
	if v, ok := r.lang[key]; ok && v != "" {
		return v, true
	}
	v, ok := r.en[key]
	return v, ok
}

// Resolve maps a "$key" value to its localized string. Other values, and
// keys missing from every dictionary, are returned unchanged.
func (r *Resources) Resolve(value string) string {
	if !strings.HasPrefix(value, "$") {
		return value
	}
	if v, ok := r.Lookup(strings.TrimPrefix(value, "$")); ok {
		return v
	}
	return value
}

// ResolveVariable first follows a "[variables('name')]" indirection through
// variables, then resolves the result as a resource.
func (r *Resources) ResolveVariable(value string, variables map[string]string) string {
	if m := variableRef.FindStringSubmatch(value); m != nil {
		if v, ok := variables[m[1]]; ok {
			value = v
		}
	}
	return r.Resolve(value)
}
