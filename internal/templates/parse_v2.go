package templates

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawJobBundle holds the raw documents of the v2 schema.
type RawJobBundle struct {
	Templates   []byte // JSON array of job templates
	UserPrompts []byte // JSON array of user prompts shared by all templates
	Resources   []byte
}

type rawJobTemplate struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Language         string            `json:"language"`
	ProgrammingModel string            `json:"programmingModel"`
	Category         []string          `json:"category"`
	Jobs             []rawJob          `json:"jobs"`
	Actions          []rawAction       `json:"actions"`
	Files            map[string]string `json:"files"`
}

type rawJob struct {
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Condition *JobCondition `json:"condition"`
	Inputs    []rawJobInput `json:"inputs"`
	Actions   []string      `json:"actions"`
}

type rawJobInput struct {
	ParamID      string `json:"paramId"`
	AssignTo     string `json:"assignTo"`
	DefaultValue any    `json:"defaultValue"`
	Required     *bool  `json:"required"`
}

type rawAction struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	AssignTo        string `json:"assignTo"`
	FilePath        string `json:"filePath"`
	Source          string `json:"source"`
	ContinueOnError bool   `json:"continueOnError"`
	ErrorText       string `json:"errorText"`
}

type rawUserPrompt struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Label        string         `json:"label"`
	Help         string         `json:"help"`
	Validators   []rawValidator `json:"validators"`
	Value        string         `json:"value"`
	Enum         []rawEnum      `json:"enum"`
	Resource     string         `json:"resource"`
	Required     bool           `json:"required"`
	DefaultValue any            `json:"defaultValue"`
}

// UnmarshalJSON accepts the condition both as {"name","hasValue"} and with
// hasValue omitted, which means "must have a value".
func (c *JobCondition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string `json:"name"`
		HasValue *bool  `json:"hasValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.HasValue = raw.HasValue == nil || *raw.HasValue
	return nil
}

// ParseJobTemplates parses a v2 bundle. Job inputs are resolved by id against
// the user prompt catalogue and job actions by name against the template's
// own actions, both ignoring case.
func ParseJobTemplates(bundle RawJobBundle, opts ...ParseOption) (*TemplateSet, error) {
	o := newParseOptions(opts)

	resources, err := ParseResources(bundle.Resources, o.locale)
	if err != nil {
		return nil, err
	}

	var rawPrompts []json.RawMessage
	if len(bundle.UserPrompts) > 0 {
		if err := json.Unmarshal(bundle.UserPrompts, &rawPrompts); err != nil {
			return nil, fmt.Errorf("parsing user prompts document: %w", err)
		}
	}

	var rawTemplates []json.RawMessage
	if err := json.Unmarshal(bundle.Templates, &rawTemplates); err != nil {
		return nil, fmt.Errorf("parsing templates document: %w", err)
	}

	set := &TemplateSet{}

	var catalogue []*ParsedInput
	for i, raw := range rawPrompts {
		var p *ParsedInput
		err := boundary(func() error {
			var perr error
			p, perr = parseUserPrompt(raw, resources)
			return perr
		})
		if err != nil {
			o.discard(set, &ParseError{Kind: "user prompt", ID: peekID(raw), Index: i, Err: err})
			continue
		}
		catalogue = append(catalogue, p)
	}

	for i, raw := range rawTemplates {
		var t *FunctionTemplate
		err := boundary(func() error {
			var perr error
			t, perr = parseJobTemplate(raw, catalogue, resources)
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

func parseUserPrompt(raw json.RawMessage, resources *Resources) (*ParsedInput, error) {
	if err := validateItem(kindUserPrompt, raw); err != nil {
		return nil, err
	}

	var rp rawUserPrompt
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, err
	}

	p := &ParsedInput{
		ID:           rp.ID,
		Name:         rp.Name,
		Label:        resources.Resolve(rp.Label),
		Help:         resources.Resolve(rp.Help),
		ValueType:    ValueType(rp.Value),
		ResourceType: rp.Resource,
		Required:     rp.Required,
	}
	if p.ValueType == "" {
		p.ValueType = ValueString
	}
	if p.Label == "" {
		p.Label = rp.Name
	}
	if dv, ok := scalarString(rp.DefaultValue); ok {
		p.DefaultValue = dv
	}
	for _, e := range rp.Enum {
		display := resources.Resolve(e.Display)
		if display == "" {
			display = e.Value
		}
		p.Enums = append(p.Enums, EnumValue{Value: e.Value, DisplayName: display})
	}
	for _, rv := range rp.Validators {
		v, err := newValidator(rv.Expression, resources.Resolve(rv.ErrorText))
		if err != nil {
			return nil, err
		}
		p.Validators = append(p.Validators, v)
	}
	return p, nil
}

func parseJobTemplate(raw json.RawMessage, catalogue []*ParsedInput, resources *Resources) (*FunctionTemplate, error) {
	if err := validateItem(kindJobTemplate, raw); err != nil {
		return nil, err
	}

	var rt rawJobTemplate
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, err
	}

	t := &FunctionTemplate{
		ID:            rt.ID,
		Name:          resources.Resolve(rt.Name),
		Description:   resources.Resolve(rt.Description),
		Language:      rt.Language,
		SchemaVersion: SchemaV2,
		Files:         rt.Files,
	}
	for _, c := range rt.Category {
		t.Categories = append(t.Categories, resources.Resolve(c))
	}
	classifyJob(t)

	for _, ra := range rt.Actions {
		at := ActionType(ra.Type)
		if !knownActionTypes[at] {
			return nil, fmt.Errorf("action %q: unknown action type %q", ra.Name, ra.Type)
		}
		t.Actions = append(t.Actions, &ParsedAction{
			Name:            ra.Name,
			Type:            at,
			AssignTo:        ra.AssignTo,
			FilePath:        ra.FilePath,
			Source:          ra.Source,
			ContinueOnError: ra.ContinueOnError,
			ErrorText:       resources.Resolve(ra.ErrorText),
		})
	}

	for _, rj := range rt.Jobs {
		job := &ParsedJob{
			Name:      resources.Resolve(rj.Name),
			Type:      JobType(rj.Type),
			Condition: rj.Condition,
		}
		for _, in := range rj.Inputs {
			input, err := resolveInput(in, catalogue)
			if err != nil {
				return nil, fmt.Errorf("job %q: %w", rj.Name, err)
			}
			job.Inputs = append(job.Inputs, input)
		}
		for _, name := range rj.Actions {
			action := findAction(t.Actions, name)
			if action == nil {
				return nil, fmt.Errorf("job %q: unknown action %q", rj.Name, name)
			}
			job.Actions = append(job.Actions, action)
		}
		t.Jobs = append(t.Jobs, job)
	}

	return t, nil
}

// resolveInput copies the catalogue prompt for in.ParamID and applies the
// job-level overrides.
func resolveInput(in rawJobInput, catalogue []*ParsedInput) (*ParsedInput, error) {
	for _, p := range catalogue {
		if !strings.EqualFold(p.ID, in.ParamID) {
			continue
		}
		input := *p
		input.AssignTo = in.AssignTo
		if dv, ok := scalarString(in.DefaultValue); ok {
			input.DefaultValue = dv
		}
		if in.Required != nil {
			input.Required = *in.Required
		}
		return &input, nil
	}
	return nil, fmt.Errorf("unknown input %q", in.ParamID)
}

func findAction(actions []*ParsedAction, name string) *ParsedAction {
	for _, a := range actions {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}
