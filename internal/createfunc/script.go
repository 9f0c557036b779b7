package createfunc

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/afero"

	"github.com/funcscaffold/funcscaffold/internal/prompt"
	"github.com/funcscaffold/funcscaffold/internal/scaffold"
	"github.com/funcscaffold/funcscaffold/internal/templates"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

// FunctionJSONFile is written next to a v1 function's files.
const FunctionJSONFile = "function.json"

var functionNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d_\-]*$`)

func (c *Creator) scriptSteps(tmpl *templates.FunctionTemplate, out *Outcome) *wizard.SubWizard {
	prompts := []wizard.PromptStep{&functionNameStep{c: c, tmpl: tmpl}}
	for _, s := range tmpl.UserPromptedSettings {
		label := c.settingLabel(tmpl, s)
		// A function-specific value is asked for directly, even for a
		// resource: the template already names the app setting.
		if s.ResourceType != "" && !s.FunctionSpecific {
			prompts = append(prompts, &resourceSettingStep{c: c, setting: s, label: label})
			continue
		}
		prompts = append(prompts, &settingStep{c: c, setting: s, label: label})
	}
	return &wizard.SubWizard{
		PromptSteps:  prompts,
		ExecuteSteps: []wizard.ExecuteStep{&functionCreateStep{c: c, tmpl: tmpl, out: out}},
	}
}

// functionNameStep asks for the function folder name.
type functionNameStep struct {
	c    *Creator
	tmpl *templates.FunctionTemplate
}

func (s *functionNameStep) ShouldPrompt(wctx *wizard.Context) bool {
	return !wctx.Has(KeyFunctionName)
}

func (s *functionNameStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	name, err := s.c.prompter.Input(ctx, prompt.InputOptions{
		Label:        "Function name",
		DefaultValue: s.c.uniqueFunctionName(wctx.ProjectPath, s.tmpl.DefaultFunctionName),
		Validate: func(v string) error {
			return s.c.validateFunctionName(wctx.ProjectPath, v)
		},
	})
	if err != nil {
		return err
	}
	wctx.SetString(KeyFunctionName, name)
	return nil
}

// uniqueFunctionName returns base1, base2, ... whichever folder is free.
func (c *Creator) uniqueFunctionName(projectPath, base string) string {
	if base == "" {
		base = "Function"
	}
	for i := 1; i < 10000; i++ {
		name := base + strconv.Itoa(i)
		if exists, _ := afero.Exists(c.fs, filepath.Join(projectPath, name)); !exists {
			return name
		}
	}
	return base
}

func (c *Creator) validateFunctionName(projectPath, name string) error {
	if !functionNamePattern.MatchString(name) {
		return &prompt.ValidationError{Message: "A function name must start with a letter and can only contain letters, digits, '_' and '-'"}
	}
	if exists, _ := afero.Exists(c.fs, filepath.Join(projectPath, name)); exists {
		return &prompt.ValidationError{Message: fmt.Sprintf("A function with the name %q already exists", name)}
	}
	return nil
}

// settingLabel prefixes shared binding settings with the binding's display
// name. Settings the template overrides keep their plain label.
func (c *Creator) settingLabel(tmpl *templates.FunctionTemplate, s *templates.BindingSetting) string {
	label := s.Label
	if label == "" {
		label = s.Name
	}
	if s.FunctionSpecific {
		return label
	}
	triggerType := tmpl.TriggerType
	if tmpl.FunctionJSON != nil && tmpl.FunctionJSON.TriggerType() != "" {
		triggerType = tmpl.FunctionJSON.TriggerType()
	}
	if b := c.set.Binding(triggerType); b != nil && b.DisplayName != "" {
		return b.DisplayName + ": " + label
	}
	return label
}

// settingStep asks for one binding setting.
type settingStep struct {
	c       *Creator
	setting *templates.BindingSetting
	label   string
}

func (s *settingStep) ShouldPrompt(wctx *wizard.Context) bool {
	return !wctx.Has(wizard.SettingKey(s.setting.Name))
}

func (s *settingStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	f := settingField(s.setting)
	f.Label = s.label
	value, err := ask(ctx, s.c.prompter, f)
	if err != nil {
		return err
	}
	key := wizard.SettingKey(s.setting.Name)
	if s.setting.ValueType == templates.ValueCheckBoxList {
		wctx.Set(key, wizard.ListValue(splitList(value)...))
		return nil
	}
	wctx.SetString(key, value)
	return nil
}

// functionCreateStep writes the function folder and its function.json.
type functionCreateStep struct {
	c    *Creator
	tmpl *templates.FunctionTemplate
	out  *Outcome
}

func (s *functionCreateStep) Priority() int { return PriorityFunctionCreate }

func (s *functionCreateStep) ShouldExecute(wctx *wizard.Context) bool { return true }

func (s *functionCreateStep) Execute(ctx context.Context, wctx *wizard.Context) error {
	name := wctx.String(KeyFunctionName)
	if !functionNamePattern.MatchString(name) {
		return fmt.Errorf("invalid function name %q", name)
	}

	fj := s.tmpl.FunctionJSON.Clone()
	for _, setting := range s.tmpl.UserPromptedSettings {
		v, ok := wctx.Get(wizard.SettingKey(setting.Name))
		if !ok {
			continue
		}
		value, ok := functionJSONValue(setting, v)
		if !ok {
			continue
		}
		if err := fj.SetTriggerValue(setting.Name, value); err != nil {
			return fmt.Errorf("setting %s: %w", setting.Name, err)
		}
	}
	data, err := fj.Marshal()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", FunctionJSONFile, err)
	}

	files := make(map[string]string, len(s.tmpl.Files)+1)
	for n, content := range s.tmpl.Files {
		files[n] = content
	}
	files[FunctionJSONFile] = string(data) + "\n"

	dir := filepath.Join(wctx.ProjectPath, name)
	result, err := scaffold.Generate(s.c.fs, dir, files, scaffold.Options{})
	if err != nil {
		return err
	}
	for _, f := range result.Files {
		s.out.Paths = append(s.out.Paths, filepath.Join(dir, filepath.FromSlash(f)))
	}
	s.out.Warnings = append(s.out.Warnings, result.Warnings...)
	s.c.log.Info("created function", "name", name, "template", s.tmpl.ID, "dir", dir, "files", len(result.Files))
	return nil
}

// functionJSONValue converts a context value to the JSON type the setting
// expects. Empty optional values are left out.
func functionJSONValue(setting *templates.BindingSetting, v wizard.Value) (any, bool) {
	switch setting.ValueType {
	case templates.ValueBoolean:
		if b, ok := v.Bool(); ok {
			return b, true
		}
		b, err := strconv.ParseBool(v.String())
		return b, err == nil
	case templates.ValueCheckBoxList:
		list, ok := v.List()
		if !ok {
			list = splitList(v.String())
		}
		return list, len(list) > 0
	default:
		s := v.String()
		return s, s != ""
	}
}
