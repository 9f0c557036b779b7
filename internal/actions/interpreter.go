package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/funcscaffold/funcscaffold/internal/templates"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

// Previewer displays rendered markdown. It is a side channel: nothing it
// does feeds back into the wizard context.
type Previewer interface {
	ShowMarkdownPreview(ctx context.Context, name, markdown string) error
}

// WriterPreviewer writes previews to an io.Writer.
type WriterPreviewer struct {
	W io.Writer
}

func (p WriterPreviewer) ShowMarkdownPreview(_ context.Context, name, markdown string) error {
	_, err := fmt.Fprintf(p.W, "\n--- %s ---\n%s\n", name, markdown)
	return err
}

// Interpreter runs job actions.
type Interpreter struct {
	fs        afero.Fs
	previewer Previewer
	log       *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger that records swallowed action failures.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		in.log = l
	}
}

// New returns an Interpreter writing to fsys. A nil previewer discards
// previews.
func New(fsys afero.Fs, previewer Previewer, opts ...Option) *Interpreter {
	in := &Interpreter{
		fs:        fsys,
		previewer: previewer,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// RunJob executes job's actions in the job's order. A failing action with
// ContinueOnError is logged and skipped; any other failure stops the job and
// is returned as an *ExecutionError. Completed actions are not undone.
func (in *Interpreter) RunJob(ctx context.Context, tmpl *templates.FunctionTemplate, job *templates.ParsedJob, wctx *wizard.Context) error {
	for _, action := range job.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := in.Run(ctx, tmpl, action, wctx)
		if err == nil {
			continue
		}
		if action.ContinueOnError {
			in.log.Warn("action failed, continuing", "template", tmpl.ID, "job", job.Name, "action", action.Name, "error", err)
			continue
		}
		return &ExecutionError{
			Job:    job.Name,
			Action: action.Name,
			Type:   action.Type,
			Text:   action.ErrorText,
			Err:    err,
		}
	}
	return nil
}

// Run executes one action.
func (in *Interpreter) Run(ctx context.Context, tmpl *templates.FunctionTemplate, action *templates.ParsedAction, wctx *wizard.Context) error {
	switch action.Type {
	case templates.ActionGetTemplateFileContent:
		return in.getTemplateFileContent(tmpl, action, wctx)
	case templates.ActionReplaceTokensInText:
		return in.replaceTokensInText(action, wctx)
	case templates.ActionWriteToFile:
		return in.writeFile(action, wctx, false)
	case templates.ActionAppendToFile:
		return in.writeFile(action, wctx, true)
	case templates.ActionShowMarkdownPreview:
		return in.showMarkdownPreview(ctx, tmpl, action, wctx)
	default:
		return fmt.Errorf("unsupported action type %q", action.Type)
	}
}

func (in *Interpreter) getTemplateFileContent(tmpl *templates.FunctionTemplate, action *templates.ParsedAction, wctx *wizard.Context) error {
	content, ok := tmpl.Files[action.FilePath]
	if !ok {
		return fmt.Errorf("template %s has no file %q", tmpl.ID, action.FilePath)
	}
	if action.AssignTo == "" {
		return errors.New("no assignTo target")
	}
	wctx.SetString(wizard.ParseKey(action.AssignTo), wctx.ReplaceTokens(content))
	return nil
}

func (in *Interpreter) replaceTokensInText(action *templates.ParsedAction, wctx *wizard.Context) error {
	ref := action.AssignTo
	if ref == "" {
		ref = action.Source
	}
	key := wizard.ParseKey(ref)
	if _, ok := wctx.Get(key); !ok {
		return fmt.Errorf("%s has no value", ref)
	}
	wctx.SetString(key, wctx.ReplaceTokens(wctx.String(key)))
	return nil
}

func (in *Interpreter) writeFile(action *templates.ParsedAction, wctx *wizard.Context, appendMode bool) error {
	target, err := TargetPath(action.FilePath, wctx)
	if err != nil {
		return err
	}
	if err := in.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := in.fs.OpenFile(target, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}
	if _, err := f.WriteString(wctx.String(wizard.ParseKey(action.Source))); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return f.Close()
}

func (in *Interpreter) showMarkdownPreview(ctx context.Context, tmpl *templates.FunctionTemplate, action *templates.ParsedAction, wctx *wizard.Context) error {
	if in.previewer == nil {
		return nil
	}
	markdown, ok := tmpl.Files[action.FilePath]
	if !ok {
		if action.Source == "" {
			return fmt.Errorf("template %s has no file %q", tmpl.ID, action.FilePath)
		}
		markdown = wctx.String(wizard.ParseKey(action.Source))
	}
	return in.previewer.ShowMarkdownPreview(ctx, action.FilePath, wctx.ReplaceTokens(markdown))
}

// TargetPath resolves a WriteToFile/AppendToFile filePath reference. The
// reference names a context value once its trailing extension is dropped:
// "$(SELECTED_FILEPATH).py" reads $(SELECTED_FILEPATH). The extension is not
// re-added; the context value is the full target. Relative targets are
// resolved against the project path.
func TargetPath(ref string, wctx *wizard.Context) (string, error) {
	keyName := ref[:len(ref)-len(path.Ext(ref))]
	key := wizard.ParseKey(keyName)
	target := wctx.String(key)
	if target == "" {
		return "", fmt.Errorf("no file path in %s", keyName)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(wctx.ProjectPath, target)
	}
	return target, nil
}
