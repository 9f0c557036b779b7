package templates

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// RawScriptBundle holds the raw documents of the v1 schema.
type RawScriptBundle struct {
	Templates []byte // JSON array of templates
	Bindings  []byte // {"variables": {...}, "bindings": [...]}
	Resources []byte // {"en": {...}, "<locale>": {...}}
}

type rawScriptTemplate struct {
	ID       string         `json:"id"`
	Function map[string]any `json:"function"`
	Metadata struct {
		Name                string   `json:"name"`
		Description         string   `json:"description"`
		DefaultFunctionName string   `json:"defaultFunctionName"`
		Language            string   `json:"language"`
		TriggerType         string   `json:"triggerType"`
		Category            []string `json:"category"`
		UserPrompt          []string `json:"userPrompt"`
	} `json:"metadata"`
	Files map[string]string `json:"files"`
}

type rawBindingDocument struct {
	Variables map[string]string `json:"variables"`
	Bindings  []json.RawMessage `json:"bindings"`
}

type rawBinding struct {
	Type        string       `json:"type"`
	Direction   string       `json:"direction"`
	DisplayName string       `json:"displayName"`
	Settings    []rawSetting `json:"settings"`
}

type rawSetting struct {
	Name         string         `json:"name"`
	Value        string         `json:"value"`
	Resource     string         `json:"resource"`
	Label        string         `json:"label"`
	Help         string         `json:"help"`
	DefaultValue any            `json:"defaultValue"`
	Required     bool           `json:"required"`
	Enum         []rawEnum      `json:"enum"`
	Validators   []rawValidator `json:"validators"`
}

type rawEnum struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

type rawValidator struct {
	Expression string `json:"expression"`
	ErrorText  string `json:"errorText"`
}

// ParseOption configures parsing.
type ParseOption func(*parseOptions)

type parseOptions struct {
	locale string
	logger *slog.Logger
}

// WithLocale selects the resource dictionary (default "en").
func WithLocale(locale string) ParseOption {
	return func(o *parseOptions) { o.locale = locale }
}

// WithLogger sets the logger that receives discarded-item diagnostics.
func WithLogger(l *slog.Logger) ParseOption {
	return func(o *parseOptions) { o.logger = l }
}

func newParseOptions(opts []ParseOption) *parseOptions {
	o := &parseOptions{locale: "en", logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ParseScriptTemplates parses a v1 bundle into bindings and function
// templates. Items that fail to parse are dropped and counted in Skipped.
func ParseScriptTemplates(bundle RawScriptBundle, opts ...ParseOption) (*TemplateSet, error) {
	o := newParseOptions(opts)

	resources, err := ParseResources(bundle.Resources, o.locale)
	if err != nil {
		return nil, err
	}

	var doc rawBindingDocument
	if len(bundle.Bindings) > 0 {
		if err := json.Unmarshal(bundle.Bindings, &doc); err != nil {
			return nil, fmt.Errorf("parsing bindings document: %w", err)
		}
	}

	var rawTemplates []json.RawMessage
	if err := json.Unmarshal(bundle.Templates, &rawTemplates); err != nil {
		return nil, fmt.Errorf("parsing templates document: %w", err)
	}

	set := &TemplateSet{}
	for i, raw := range doc.Bindings {
		var b *BindingTemplate
		err := boundary(func() error {
			var perr error
			b, perr = parseScriptBinding(raw, doc.Variables, resources)
			return perr
		})
		if err != nil {
			o.discard(set, &ParseError{Kind: "binding", Index: i, Err: err})
			continue
		}
		set.BindingTemplates = append(set.BindingTemplates, b)
	}

	for i, raw := range rawTemplates {
		var t *FunctionTemplate
		err := boundary(func() error {
			var perr error
			t, perr = parseScriptTemplate(raw, set.BindingTemplates, resources)
			return perr
		})
		if err != nil {
			o.discard(set, &ParseError{Kind: "template", ID: peekID(raw), Index: i, Err: err})
			continue
		}
		set.FunctionTemplates = append(set.FunctionTemplates, t)
	}

	if len(set.FunctionTemplates) == 0 {
		return nil, ErrNoTemplates
	}
	return set, nil
}

func (o *parseOptions) discard(set *TemplateSet, perr *ParseError) {
	set.Skipped++
	o.logger.Warn("discarding malformed template item", "kind", perr.Kind, "id", perr.ID, "index", perr.Index, "error", perr.Err)
}

// peekID extracts "id" from a raw item for diagnostics.
func peekID(raw json.RawMessage) string {
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.ID
}

func parseScriptBinding(raw json.RawMessage, variables map[string]string, resources *Resources) (*BindingTemplate, error) {
	if err := validateItem(kindBinding, raw); err != nil {
		return nil, err
	}

	var rb rawBinding
	if err := json.Unmarshal(raw, &rb); err != nil {
		return nil, err
	}

	b := &BindingTemplate{
		Type:           rb.Type,
		Direction:      rb.Direction,
		DisplayName:    resources.ResolveVariable(rb.DisplayName, variables),
		IsHTTPTrigger:  httpTriggerPattern.MatchString(rb.Type),
		IsTimerTrigger: timerTriggerPattern.MatchString(rb.Type),
	}

	for _, rs := range rb.Settings {
		s, err := parseScriptSetting(rs, variables, resources)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", rs.Name, err)
		}
		b.Settings = append(b.Settings, s)
	}
	return b, nil
}

func parseScriptSetting(rs rawSetting, variables map[string]string, resources *Resources) (*BindingSetting, error) {
	s := &BindingSetting{
		Name:         rs.Name,
		ValueType:    ValueType(rs.Value),
		ResourceType: rs.Resource,
		Label:        resources.ResolveVariable(rs.Label, variables),
		Help:         resources.ResolveVariable(rs.Help, variables),
		Required:     rs.Required,
	}
	if s.ValueType == "" {
		s.ValueType = ValueString
	}
	if dv, ok := scalarString(rs.DefaultValue); ok {
		s.DefaultValue = resources.ResolveVariable(dv, variables)
	}
	for _, e := range rs.Enum {
		display := resources.ResolveVariable(e.Display, variables)
		if display == "" {
			display = e.Value
		}
		s.Enums = append(s.Enums, EnumValue{Value: e.Value, DisplayName: display})
	}
	for _, rv := range rs.Validators {
		v, err := newValidator(rv.Expression, resources.ResolveVariable(rv.ErrorText, variables))
		if err != nil {
			return nil, err
		}
		s.Validators = append(s.Validators, v)
	}
	return s, nil
}

func parseScriptTemplate(raw json.RawMessage, bindings []*BindingTemplate, resources *Resources) (*FunctionTemplate, error) {
	if err := validateItem(kindScriptTemplate, raw); err != nil {
		return nil, err
	}

	var rt rawScriptTemplate
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, err
	}

	functionJSON := NewFunctionJSON(rt.Function)

	t := &FunctionTemplate{
		ID:                  rt.ID,
		Name:                resources.Resolve(rt.Metadata.Name),
		Description:         resources.Resolve(rt.Metadata.Description),
		DefaultFunctionName: rt.Metadata.DefaultFunctionName,
		Language:            scriptLanguage(rt.Metadata.Language),
		SchemaVersion:       SchemaV1,
		TriggerType:         rt.Metadata.TriggerType,
		Files:               rt.Files,
		FunctionJSON:        functionJSON,
	}
	if t.DefaultFunctionName == "" {
		t.DefaultFunctionName = strings.ReplaceAll(t.Name, " ", "")
	}
	for _, c := range rt.Metadata.Category {
		t.Categories = append(t.Categories, resources.Resolve(c))
	}

	trigger := functionJSON.TriggerBinding()
	triggerType := functionJSON.TriggerType()
	classifyScript(t, triggerType)

	if trigger != nil {
		var binding *BindingTemplate
		for _, b := range bindings {
			if strings.EqualFold(b.Type, triggerType) {
				binding = b
				break
			}
		}
		for _, name := range rt.Metadata.UserPrompt {
			if binding == nil {
				break
			}
			shared := binding.Setting(name)
			if shared == nil {
				continue
			}
			// Copy so that an override never leaks into the shared binding.
			setting := *shared
			if override, ok := scalarString(trigger[shared.Name]); ok && override != "" {
				setting.DefaultValue = override
				setting.FunctionSpecific = true
			}
			t.UserPromptedSettings = append(t.UserPromptedSettings, &setting)
		}
	}

	return t, nil
}

// scriptLanguage maps the feed's bare "C#"/"F#" labels to their script
// flavours; v1 templates are always script templates.
func scriptLanguage(lang string) string {
	switch lang {
	case "C#":
		return "C#Script"
	case "F#":
		return "F#Script"
	default:
		return lang
	}
}
