package createfunc

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/funcscaffold/funcscaffold/internal/actions"
	"github.com/funcscaffold/funcscaffold/internal/prompt"
	"github.com/funcscaffold/funcscaffold/internal/templates"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

func (c *Creator) jobSteps(tmpl *templates.FunctionTemplate, out *Outcome) *wizard.SubWizard {
	return &wizard.SubWizard{
		PromptSteps: []wizard.PromptStep{&jobPickStep{c: c, tmpl: tmpl, out: out}},
	}
}

// jobPickStep chooses which job of a v2 template runs. A job named in the
// context is used as is; a single applicable job is chosen silently.
type jobPickStep struct {
	c    *Creator
	tmpl *templates.FunctionTemplate
	out  *Outcome
}

func (s *jobPickStep) ShouldPrompt(*wizard.Context) bool { return true }

func (s *jobPickStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	job, err := s.choose(ctx, wctx)
	if err != nil {
		return err
	}
	wctx.SetString(KeyJobName, job.Name)
	if job.Type == templates.JobCreateNewApp && !wctx.Has(TokenFilePath) {
		if target := defaultTarget(job, s.tmpl); target != "" {
			wctx.SetString(TokenFilePath, target)
		}
	}
	return nil
}

func (s *jobPickStep) choose(ctx context.Context, wctx *wizard.Context) (*templates.ParsedJob, error) {
	if name := wctx.String(KeyJobName); name != "" {
		job := s.tmpl.Job(name)
		if job == nil {
			return nil, fmt.Errorf("template %s has no job %q", s.tmpl.ID, name)
		}
		if !s.applicable(job, wctx) {
			return nil, fmt.Errorf("job %q does not apply here", name)
		}
		return job, nil
	}

	var candidates []*templates.ParsedJob
	for _, job := range s.tmpl.Jobs {
		if s.applicable(job, wctx) {
			candidates = append(candidates, job)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("no job of template %s applies: to add to an existing file, select it with %s", s.tmpl.ID, TokenFilePath)
	case 1:
		return candidates[0], nil
	}

	items := make([]prompt.Item, 0, len(candidates))
	for _, job := range candidates {
		items = append(items, prompt.Item{Label: job.Name, Description: string(job.Type), Value: job.Name})
	}
	item, err := s.c.prompter.Pick(ctx, prompt.PickOptions{Label: "Select what to do", Items: items})
	if err != nil {
		return nil, err
	}
	return s.tmpl.Job(item.Value), nil
}

// applicable reports whether job's condition holds. Jobs that create a new
// app are skipped when their target file already exists.
func (s *jobPickStep) applicable(job *templates.ParsedJob, wctx *wizard.Context) bool {
	if !actions.ConditionMet(job.Condition, wctx) {
		return false
	}
	if job.Type != templates.JobCreateNewApp {
		return true
	}
	target := wctx.String(TokenFilePath)
	if target == "" {
		target = defaultTarget(job, s.tmpl)
	}
	if target == "" {
		return true
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(wctx.ProjectPath, target)
	}
	exists, _ := afero.Exists(s.c.fs, target)
	return !exists
}

func (s *jobPickStep) SubWizard(_ context.Context, wctx *wizard.Context) (*wizard.SubWizard, error) {
	job := s.tmpl.Job(wctx.String(KeyJobName))
	if job == nil {
		return nil, fmt.Errorf("template %s has no job %q", s.tmpl.ID, wctx.String(KeyJobName))
	}
	sub := &wizard.SubWizard{}
	for _, in := range job.Inputs {
		sub.PromptSteps = append(sub.PromptSteps, &inputStep{c: s.c, input: in})
	}
	sub.ExecuteSteps = []wizard.ExecuteStep{&recordingJobStep{
		JobStep: actions.NewJobStep(s.c.interp, s.tmpl, job, PriorityJob),
		c:       s.c,
		job:     job,
		tmpl:    s.tmpl,
		out:     s.out,
	}}
	return sub, nil
}

// defaultTarget is the file a new app is written to: the template file read
// by the job's first GetTemplateFileContent action.
func defaultTarget(job *templates.ParsedJob, tmpl *templates.FunctionTemplate) string {
	for _, a := range job.Actions {
		if a.Type == templates.ActionGetTemplateFileContent {
			if _, ok := tmpl.Files[a.FilePath]; ok {
				return a.FilePath
			}
		}
	}
	return ""
}

// inputStep asks for one job input.
type inputStep struct {
	c     *Creator
	input *templates.ParsedInput
}

func (s *inputStep) key() wizard.Key { return wizard.ParseKey(s.input.AssignTo) }

func (s *inputStep) ShouldPrompt(wctx *wizard.Context) bool {
	return !wctx.Has(s.key())
}

func (s *inputStep) Prompt(ctx context.Context, wctx *wizard.Context) error {
	value, err := ask(ctx, s.c.prompter, inputField(s.input))
	if err != nil {
		return err
	}
	wctx.SetString(s.key(), value)
	return nil
}

// recordingJobStep runs a job and records the files it touched.
type recordingJobStep struct {
	*actions.JobStep
	c    *Creator
	job  *templates.ParsedJob
	tmpl *templates.FunctionTemplate
	out  *Outcome
}

// ShouldExecute is always true: the job's condition was checked when it was
// picked, before the pick filled in the default target token that the
// condition may name.
func (s *recordingJobStep) ShouldExecute(*wizard.Context) bool { return true }

func (s *recordingJobStep) Execute(ctx context.Context, wctx *wizard.Context) error {
	if err := s.JobStep.Execute(ctx, wctx); err != nil {
		return err
	}
	seen := make(map[string]bool, len(s.out.Paths))
	for _, p := range s.out.Paths {
		seen[p] = true
	}
	for _, a := range s.job.Actions {
		if a.Type != templates.ActionWriteToFile && a.Type != templates.ActionAppendToFile {
			continue
		}
		target, err := actions.TargetPath(a.FilePath, wctx)
		if err != nil || seen[target] {
			continue
		}
		seen[target] = true
		s.out.Paths = append(s.out.Paths, target)
	}
	s.c.log.Info("ran job", "template", s.tmpl.ID, "job", s.job.Name, "files", len(s.out.Paths))
	return nil
}
