package createfunc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/funcscaffold/funcscaffold/internal/actions"
	"github.com/funcscaffold/funcscaffold/internal/prompt"
	"github.com/funcscaffold/funcscaffold/internal/templates"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

// Context keys shared by the steps.
var (
	KeyTemplateID   = wizard.SettingKey("templateId")
	KeyFunctionName = wizard.SettingKey("functionName")
	KeyJobName      = wizard.SettingKey("jobName")
	TokenFilePath   = wizard.TokenKey("SELECTED_FILEPATH")
)

// Execute priorities. Local settings are written before the function that
// references them.
const (
	PriorityLocalSettings  = 190
	PriorityFunctionCreate = 210
	PriorityJob            = actions.JobPriority
)

// Options configure a Creator.
type Options struct {
	Templates   *templates.TemplateSet
	Prompter    prompt.Prompter
	FS          afero.Fs
	Interpreter *actions.Interpreter
	Logger      *slog.Logger
}

// Outcome summarises a completed run.
type Outcome struct {
	Template *templates.FunctionTemplate
	// Paths are the files written or appended to, in write order.
	Paths    []string
	Warnings []string
}

// Creator builds and runs function-creation wizards.
type Creator struct {
	set      *templates.TemplateSet
	prompter prompt.Prompter
	fs       afero.Fs
	interp   *actions.Interpreter
	log      *slog.Logger
}

// New returns a Creator. Templates, Prompter and FS are required.
func New(opts Options) (*Creator, error) {
	if opts.Templates == nil || len(opts.Templates.FunctionTemplates) == 0 {
		return nil, templates.ErrNoTemplates
	}
	if opts.Prompter == nil || opts.FS == nil {
		return nil, errors.New("createfunc: prompter and file system are required")
	}
	c := &Creator{
		set:      opts.Templates,
		prompter: opts.Prompter,
		fs:       opts.FS,
		interp:   opts.Interpreter,
		log:      opts.Logger,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.interp == nil {
		c.interp = actions.New(c.fs, nil, actions.WithLogger(c.log))
	}
	return c, nil
}

// Wizard builds the wizard for wctx. When wctx already names a template, its
// steps are used directly and the template pick is never shown.
func (c *Creator) Wizard(wctx *wizard.Context) (*wizard.Wizard, *Outcome, error) {
	out := &Outcome{}
	opts := wizard.Options{Logger: c.log}

	if id := wctx.String(KeyTemplateID); id != "" {
		tmpl := c.set.Template(id)
		if tmpl == nil {
			return nil, nil, fmt.Errorf("template %q not found for %s", id, wctx.Language)
		}
		sub := c.templateSteps(tmpl, out)
		opts.PromptSteps, opts.ExecuteSteps = sub.PromptSteps, sub.ExecuteSteps
	} else {
		opts.PromptSteps = []wizard.PromptStep{&templateStep{c: c, out: out}}
	}
	return wizard.New(wctx, opts), out, nil
}

// Run prompts and then executes. A cancelled run returns
// wizard.ErrUserCancelled and writes nothing.
func (c *Creator) Run(ctx context.Context, wctx *wizard.Context) (*Outcome, error) {
	w, out, err := c.Wizard(wctx)
	if err != nil {
		return nil, err
	}
	if err := w.Prompt(ctx); err != nil {
		return nil, err
	}
	if err := w.Execute(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// templateSteps returns the flow for one template.
func (c *Creator) templateSteps(tmpl *templates.FunctionTemplate, out *Outcome) *wizard.SubWizard {
	out.Template = tmpl
	if tmpl.SchemaVersion == templates.SchemaV2 {
		return c.jobSteps(tmpl, out)
	}
	return c.scriptSteps(tmpl, out)
}

// templateStep picks the template.
type templateStep struct {
	c   *Creator
	out *Outcome
}

func (s *templateStep) ShouldPrompt(wctx *wizard.Context) bool {
	return !wctx.Has(KeyTemplateID)
}

func (s *templateStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	items := make([]prompt.Item, 0, len(s.c.set.FunctionTemplates))
	for _, tmpl := range s.c.set.FunctionTemplates {
		items = append(items, prompt.Item{
			Label:       tmpl.Name,
			Description: templateDescription(tmpl),
			Value:       tmpl.ID,
		})
	}
	item, err := s.c.prompter.Pick(ctx, prompt.PickOptions{
		Label: "Select a template for your function",
		Items: items,
	})
	if err != nil {
		return err
	}
	wctx.SetString(KeyTemplateID, item.Value)
	return nil
}

func (s *templateStep) SubWizard(_ context.Context, wctx *wizard.Context) (*wizard.SubWizard, error) {
	tmpl := s.c.set.Template(wctx.String(KeyTemplateID))
	if tmpl == nil {
		return nil, fmt.Errorf("template %q not found", wctx.String(KeyTemplateID))
	}
	return s.c.templateSteps(tmpl, s.out), nil
}

func templateDescription(tmpl *templates.FunctionTemplate) string {
	parts := []string{string(tmpl.SchemaVersion), tmpl.TriggerKind()}
	if len(tmpl.Categories) > 0 {
		parts = append(parts, strings.Join(tmpl.Categories, ", "))
	}
	return strings.Join(parts, " | ")
}
