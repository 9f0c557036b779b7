package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/funcscaffold/funcscaffold/internal/actions"
	"github.com/funcscaffold/funcscaffold/internal/createfunc"
	"github.com/funcscaffold/funcscaffold/internal/prompt"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

var (
	createLanguage string
	createRuntime  string
	createSchema   string
	createTemplate string
	createName     string
	createJob      string
	createFile     string
	createProject  string
	createSettings []string
)

func init() {
	createCmd.Flags().StringVarP(&createLanguage, "language", "l", "", "Function language, e.g. JavaScript, Python, C# (required)")
	createCmd.Flags().StringVar(&createRuntime, "runtime", "~4", "Functions runtime version")
	createCmd.Flags().StringVar(&createSchema, "schema", "", "Template schema: v1, v2 or all (default from config)")
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "Template id; skips the template question")
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Function name (v1 templates)")
	createCmd.Flags().StringVar(&createJob, "job", "", "Job name (v2 templates)")
	createCmd.Flags().StringVar(&createFile, "file", "", "Existing source file to add the function to (v2 templates)")
	createCmd.Flags().StringVarP(&createProject, "project", "p", ".", "Function project directory")
	createCmd.Flags().StringArrayVar(&createSettings, "set", nil, "Preset an answer as key=value; repeatable")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a function from a template",
	Long: `Create a function from a template. Questions that are already answered
by flags are skipped. Type :q at any question to cancel without writing files.

Examples:
  funcscaffold create --language JavaScript
  funcscaffold create -l JavaScript -t HttpTrigger-JavaScript -n Hello --set authLevel=anonymous
  funcscaffold create -l Python -t HttpTrigger-Python --file function_app.py`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createLanguage == "" {
			return fmt.Errorf("--language is required")
		}
		filter, err := schemaFilter(createSchema)
		if err != nil {
			return err
		}
		projectPath, err := filepath.Abs(createProject)
		if err != nil {
			return fmt.Errorf("resolving project path: %w", err)
		}

		wctx := wizard.NewContext(createLanguage, createRuntime, projectPath)
		if err := presetAnswers(wctx, createSettings); err != nil {
			return err
		}

		provider, closeStore, err := newProvider(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		set, err := provider.GetFunctionTemplates(cmd.Context(), createLanguage, createRuntime, filter)
		if err != nil {
			return fmt.Errorf("loading templates: %w", err)
		}

		fsys := afero.NewOsFs()
		creator, err := createfunc.New(createfunc.Options{
			Templates:   set,
			Prompter:    prompt.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr()),
			FS:          fsys,
			Interpreter: actions.New(fsys, actions.WriterPreviewer{W: cmd.ErrOrStderr()}, actions.WithLogger(slog.Default())),
			Logger:      slog.Default(),
		})
		if err != nil {
			return fmt.Errorf("no %s templates available: %w", createLanguage, err)
		}

		out, err := creator.Run(cmd.Context(), wctx)
		if wizard.IsCancelled(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		printOutcome(cmd, projectPath, out)
		return nil
	},
}

// presetAnswers applies the command's flags and key=value pairs to wctx.
// Keys written as $(NAME) are tokens; anything else names a setting.
func presetAnswers(wctx *wizard.Context, pairs []string) error {
	if createTemplate != "" {
		wctx.SetString(createfunc.KeyTemplateID, createTemplate)
	}
	if createName != "" {
		wctx.SetString(createfunc.KeyFunctionName, createName)
	}
	if createJob != "" {
		wctx.SetString(createfunc.KeyJobName, createJob)
	}
	if createFile != "" {
		wctx.SetString(createfunc.TokenFilePath, createFile)
	}
	for _, pair := range pairs {
		key, value, err := parseAssignment(pair)
		if err != nil {
			return err
		}
		wctx.SetString(wizard.ParseKey(key), value)
	}
	return nil
}

func parseAssignment(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid --set %q: want key=value", pair)
	}
	return key, value, nil
}

func printOutcome(cmd *cobra.Command, projectPath string, out *createfunc.Outcome) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created %s (%s)\n", out.Template.Name, out.Template.ID)
	for _, p := range out.Paths {
		rel, err := filepath.Rel(projectPath, p)
		if err != nil {
			rel = p
		}
		fmt.Fprintf(w, "  %s\n", rel)
	}
	for _, warning := range out.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
	}
}
