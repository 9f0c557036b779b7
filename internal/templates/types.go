package templates

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaVersion identifies a template authoring generation.
type SchemaVersion string

const (
	SchemaV1 SchemaVersion = "v1"
	SchemaV2 SchemaVersion = "v2"
)

// ParseSchemaVersion accepts "v1"/"v2" in any case.
func ParseSchemaVersion(s string) (SchemaVersion, error) {
	switch SchemaVersion(strings.ToLower(s)) {
	case SchemaV1:
		return SchemaV1, nil
	case SchemaV2:
		return SchemaV2, nil
	default:
		return "", fmt.Errorf("unknown template schema version %q (want v1 or v2)", s)
	}
}

// ValueType is the kind of value a setting or input accepts.
type ValueType string

const (
	ValueString  ValueType = "string"
	ValueEnum    ValueType = "enum"
	ValueBoolean ValueType = "boolean"
	// ValueCheckBoxList appears in some v1 settings (e.g. HTTP methods).
	ValueCheckBoxList ValueType = "checkBoxList"
)

// EnumValue is one allowed value of an enum setting.
type EnumValue struct {
	Value       string
	DisplayName string
}

// Validator is a regular expression every accepted value must match.
type Validator struct {
	Expression string
	ErrorText  string

	re *regexp.Regexp
}

// Check returns an error carrying ErrorText when value does not match.
func (v Validator) Check(value string) error {
	re := v.re
	if re == nil {
		var err error
		re, err = regexp.Compile(v.Expression)
		if err != nil {
			return fmt.Errorf("invalid validator expression %q: %w", v.Expression, err)
		}
	}
	if !re.MatchString(value) {
		return fmt.Errorf("%s", v.ErrorText)
	}
	return nil
}

func newValidator(expression, errorText string) (Validator, error) {
	re, err := regexp.Compile(expression)
	if err != nil {
		return Validator{}, fmt.Errorf("compiling validator %q: %w", expression, err)
	}
	return Validator{Expression: expression, ErrorText: errorText, re: re}, nil
}

// validate runs the required check and every validator against value.
func validate(value string, required bool, validators []Validator) error {
	if value == "" {
		if required {
			return fmt.Errorf("a value is required")
		}
		return nil
	}
	for _, v := range validators {
		if err := v.Check(value); err != nil {
			return err
		}
	}
	return nil
}

// BindingSetting is one configurable property of a binding.
type BindingSetting struct {
	Name         string
	ValueType    ValueType
	ResourceType string
	Label        string
	Help         string
	DefaultValue string
	Required     bool
	Enums        []EnumValue
	Validators   []Validator
	// FunctionSpecific is set when the template overrides the binding-level
	// default. Such settings are prompted directly with the override value.
	FunctionSpecific bool
}

// Validate checks a user-entered value. It returns nil for valid input.
func (s *BindingSetting) Validate(value string) error {
	return validate(value, s.Required, s.Validators)
}

// BindingTemplate describes one binding type from the binding catalogue.
type BindingTemplate struct {
	Type           string
	Direction      string
	DisplayName    string
	IsHTTPTrigger  bool
	IsTimerTrigger bool
	Settings       []*BindingSetting
}

// Setting returns the named setting (case-insensitive) or nil.
func (b *BindingTemplate) Setting(name string) *BindingSetting {
	for _, s := range b.Settings {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

// JobType enumerates v2 job kinds.
type JobType string

const (
	JobCreateNewApp       JobType = "CreateNewApp"
	JobCreateNewBlueprint JobType = "CreateNewBlueprint"
	JobAppendToBlueprint  JobType = "AppendToBlueprint"
	JobAppendToFile       JobType = "AppendToFile"
	JobWriteToFile        JobType = "WriteToFile"
)

// ActionType enumerates v2 action kinds.
type ActionType string

const (
	ActionAppendToFile           ActionType = "AppendToFile"
	ActionWriteToFile            ActionType = "WriteToFile"
	ActionGetTemplateFileContent ActionType = "GetTemplateFileContent"
	ActionReplaceTokensInText    ActionType = "ReplaceTokensInText"
	ActionShowMarkdownPreview    ActionType = "ShowMarkdownPreview"
)

var knownActionTypes = map[ActionType]bool{
	ActionAppendToFile:           true,
	ActionWriteToFile:            true,
	ActionGetTemplateFileContent: true,
	ActionReplaceTokensInText:    true,
	ActionShowMarkdownPreview:    true,
}

// ParsedInput is a user prompt bound to a job.
type ParsedInput struct {
	ID           string
	Name         string
	Label        string
	Help         string
	Validators   []Validator
	ValueType    ValueType
	Enums        []EnumValue
	ResourceType string
	Required     bool
	DefaultValue string
	// AssignTo is the context key that receives the answer, usually a
	// $(TOKEN).
	AssignTo string
}

// Validate checks a user-entered value. It returns nil for valid input.
func (p *ParsedInput) Validate(value string) error {
	return validate(value, p.Required, p.Validators)
}

// ParsedAction is one effect of a job.
type ParsedAction struct {
	Name            string
	Type            ActionType
	AssignTo        string
	FilePath        string
	Source          string
	ContinueOnError bool
	ErrorText       string
}

// JobCondition gates a job on the presence of a context value.
type JobCondition struct {
	Name     string
	HasValue bool
}

// ParsedJob is a named sequence of inputs and actions.
type ParsedJob struct {
	Name      string
	Type      JobType
	Condition *JobCondition
	Inputs    []*ParsedInput
	// Actions are in job declaration order, which may differ from the
	// template's action catalogue order.
	Actions []*ParsedAction
}

// FunctionTemplate is the normalized template record for both schemas.
type FunctionTemplate struct {
	ID                  string
	Name                string
	Description         string
	DefaultFunctionName string
	Language            string
	Categories          []string
	SchemaVersion       SchemaVersion

	IsHTTPTrigger  bool
	IsTimerTrigger bool
	IsMCPTrigger   bool

	// Files maps template-relative file names to their opaque content.
	Files map[string]string

	// v1 only.
	TriggerType          string
	UserPromptedSettings []*BindingSetting
	// FunctionJSON is the template's function.json document.
	FunctionJSON *FunctionJSON

	// v2 only.
	Jobs    []*ParsedJob
	Actions []*ParsedAction
}

// Job returns the named job (case-insensitive) or nil.
func (t *FunctionTemplate) Job(name string) *ParsedJob {
	for _, j := range t.Jobs {
		if strings.EqualFold(j.Name, name) {
			return j
		}
	}
	return nil
}

// Source names where a TemplateSet's raw data came from.
type Source string

const (
	SourceFeed       Source = "feed"
	SourceCache      Source = "cache"
	SourceStaleCache Source = "stale-cache"
	SourceBackup     Source = "backup"
)

// TemplateSet is the result of parsing one schema's raw bundle.
type TemplateSet struct {
	FunctionTemplates []*FunctionTemplate
	BindingTemplates  []*BindingTemplate
	// Skipped counts items dropped at their parse boundary.
	Skipped int
	// Source is set by the template cache. Direct parses leave it empty.
	Source Source
}

// Template returns the function template with the given id (case-insensitive).
func (s *TemplateSet) Template(id string) *FunctionTemplate {
	for _, t := range s.FunctionTemplates {
		if strings.EqualFold(t.ID, id) {
			return t
		}
	}
	return nil
}

// Binding returns the binding template for a binding type (case-insensitive).
func (s *TemplateSet) Binding(bindingType string) *BindingTemplate {
	for _, b := range s.BindingTemplates {
		if strings.EqualFold(b.Type, bindingType) {
			return b
		}
	}
	return nil
}

// FilterByLanguage returns a copy of set keeping only templates whose
// language equals language, ignoring case. Bindings are kept as is.
func FilterByLanguage(set *TemplateSet, language string) *TemplateSet {
	out := &TemplateSet{
		BindingTemplates: set.BindingTemplates,
		Skipped:          set.Skipped,
		Source:           set.Source,
	}
	for _, t := range set.FunctionTemplates {
		if strings.EqualFold(t.Language, language) {
			out.FunctionTemplates = append(out.FunctionTemplates, t)
		}
	}
	return out
}
