package createfunc

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/funcscaffold/funcscaffold/internal/prompt"
	"github.com/funcscaffold/funcscaffold/internal/templates"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

// LocalSettingsFile holds app settings for local runs.
const LocalSettingsFile = "local.settings.json"

// defaultAppSettings names the conventional app setting per resource type.
var defaultAppSettings = map[string]string{
	"Storage": "AzureWebJobsStorage",
}

func defaultAppSetting(resourceType string) string {
	if name, ok := defaultAppSettings[resourceType]; ok {
		return name
	}
	return resourceType + "Connection"
}

// resourceSettingStep asks which app setting holds a resource connection.
// Its sub-wizard asks for the connection value and records it in
// local.settings.json.
type resourceSettingStep struct {
	c       *Creator
	setting *templates.BindingSetting
	label   string
}

func (s *resourceSettingStep) nameKey() wizard.Key {
	return wizard.SettingKey(s.setting.Name)
}

func (s *resourceSettingStep) valueKey() wizard.Key {
	return wizard.SettingKey(s.setting.Name + "Value")
}

func (s *resourceSettingStep) ShouldPrompt(wctx *wizard.Context) bool {
	return !wctx.Has(s.nameKey())
}

func (s *resourceSettingStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	name, err := s.c.prompter.Input(ctx, prompt.InputOptions{
		Label:        s.label + " (app setting name)",
		Help:         s.setting.Help,
		DefaultValue: defaultAppSetting(s.setting.ResourceType),
		Validate: func(v string) error {
			if v == "" {
				return &prompt.ValidationError{Message: "An app setting name is required"}
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	wctx.SetString(s.nameKey(), name)
	return nil
}

func (s *resourceSettingStep) SubWizard(_ context.Context, _ *wizard.Context) (*wizard.SubWizard, error) {
	return &wizard.SubWizard{
		PromptSteps: []wizard.PromptStep{&connectionValueStep{
			c:            s.c,
			nameKey:      s.nameKey(),
			valueKey:     s.valueKey(),
			resourceType: s.setting.ResourceType,
		}},
		ExecuteSteps: []wizard.ExecuteStep{&localSettingsStep{
			c:        s.c,
			nameKey:  s.nameKey(),
			valueKey: s.valueKey(),
		}},
	}, nil
}

// connectionValueStep asks for the value of a new app setting.
type connectionValueStep struct {
	c            *Creator
	nameKey      wizard.Key
	valueKey     wizard.Key
	resourceType string
}

func (s *connectionValueStep) ShouldPrompt(wctx *wizard.Context) bool {
	if wctx.Has(s.valueKey) {
		return false
	}
	name := wctx.String(s.nameKey)
	return name != "" && !s.c.hasLocalSetting(wctx.ProjectPath, name)
}

func (s *connectionValueStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	value, err := s.c.prompter.Input(ctx, prompt.InputOptions{
		Label: fmt.Sprintf("%s connection string for %s (leave empty to fill in later)", s.resourceType, wctx.String(s.nameKey)),
	})
	if err != nil {
		return err
	}
	wctx.SetString(s.valueKey, value)
	return nil
}

// localSettingsStep adds the app setting to local.settings.json. Existing
// values are never overwritten.
type localSettingsStep struct {
	c        *Creator
	nameKey  wizard.Key
	valueKey wizard.Key
}

func (s *localSettingsStep) Priority() int { return PriorityLocalSettings }

func (s *localSettingsStep) ShouldExecute(wctx *wizard.Context) bool {
	name := wctx.String(s.nameKey)
	return name != "" && !s.c.hasLocalSetting(wctx.ProjectPath, name)
}

func (s *localSettingsStep) Execute(_ context.Context, wctx *wizard.Context) error {
	path := filepath.Join(wctx.ProjectPath, LocalSettingsFile)
	doc, err := readLocalSettings(s.c.fs, path)
	if err != nil {
		return err
	}
	values := settingValues(doc)
	name := wctx.String(s.nameKey)
	if _, ok := values[name]; ok {
		return nil
	}
	values[name] = wctx.String(s.valueKey)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering %s: %w", LocalSettingsFile, err)
	}
	if err := s.c.fs.MkdirAll(wctx.ProjectPath, 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	if err := afero.WriteFile(s.c.fs, path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", LocalSettingsFile, err)
	}
	s.c.log.Info("added app setting", "name", name, "file", path)
	return nil
}

func (c *Creator) hasLocalSetting(projectPath, name string) bool {
	doc, err := readLocalSettings(c.fs, filepath.Join(projectPath, LocalSettingsFile))
	if err != nil {
		return false
	}
	_, ok := settingValues(doc)[name]
	return ok
}

// readLocalSettings returns the decoded file, or a fresh document when the
// file does not exist.
func readLocalSettings(fsys afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if exists, _ := afero.Exists(fsys, path); !exists {
			return map[string]any{"IsEncrypted": false, "Values": map[string]any{}}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", LocalSettingsFile, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", LocalSettingsFile, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// settingValues returns the document's Values object, creating it if needed.
func settingValues(doc map[string]any) map[string]any {
	values, ok := doc["Values"].(map[string]any)
	if !ok {
		values = map[string]any{}
		doc["Values"] = values
	}
	return values
}
