package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/funcscaffold/funcscaffold/internal/templates"
)

var (
	templatesLanguage string
	templatesRuntime  string
	templatesSchema   string
	templatesJSON     bool
)

func init() {
	templatesCmd.PersistentFlags().StringVarP(&templatesLanguage, "language", "l", "", "Function language, e.g. JavaScript, Python, C# (required)")
	templatesCmd.PersistentFlags().StringVar(&templatesRuntime, "runtime", "~4", "Functions runtime version")
	templatesListCmd.Flags().StringVar(&templatesSchema, "schema", "", "Template schema: v1, v2 or all (default from config)")
	templatesListCmd.Flags().BoolVar(&templatesJSON, "json", false, "Output in JSON format")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesClearCacheCmd)
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and manage function templates",
}

// templateEntry is one template row for display.
type templateEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Schema   string `json:"schema"`
	Trigger  string `json:"trigger"`
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the templates available for a language",
	Long: `List the function templates available for a language and runtime version.

Example:
  funcscaffold templates list --language JavaScript --schema v1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if templatesLanguage == "" {
			return fmt.Errorf("--language is required")
		}
		filter, err := schemaFilter(templatesSchema)
		if err != nil {
			return err
		}

		provider, closeStore, err := newProvider(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		set, err := provider.GetFunctionTemplates(cmd.Context(), templatesLanguage, templatesRuntime, filter)
		if err != nil {
			return fmt.Errorf("loading templates: %w", err)
		}

		entries := make([]templateEntry, 0, len(set.FunctionTemplates))
		for _, t := range set.FunctionTemplates {
			entries = append(entries, templateEntry{
				ID:       t.ID,
				Name:     t.Name,
				Language: t.Language,
				Schema:   string(t.SchemaVersion),
				Trigger:  t.TriggerKind(),
			})
		}

		if templatesJSON {
			return printTemplatesJSON(cmd, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No templates for %s.\n", templatesLanguage)
			return nil
		}
		if err := printTemplatesTable(cmd, entries); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%d template(s) from %s\n", len(entries), sourceLabel(set))
		return nil
	},
}

var templatesClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove cached templates for a language",
	Long: `Remove cached templates for a language and runtime.

v2 templates are cached per language. v1 templates are cached once per
runtime and shared by every language, so clearing them here also makes
other languages download v1 templates again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if templatesLanguage == "" {
			return fmt.Errorf("--language is required")
		}
		provider, closeStore, err := newProvider(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := provider.ClearTemplateCache(cmd.Context(), templatesLanguage, templatesRuntime); err != nil {
			return fmt.Errorf("clearing template cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached %s v2 templates and the shared v1 templates for runtime %s\n", templatesLanguage, templatesRuntime)
		return nil
	},
}

func sourceLabel(set *templates.TemplateSet) string {
	if set.Source == "" {
		return "unknown source"
	}
	return string(set.Source)
}

func printTemplatesTable(cmd *cobra.Command, entries []templateEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCHEMA\tTRIGGER")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Schema, e.Trigger)
	}
	return w.Flush()
}

func printTemplatesJSON(cmd *cobra.Command, entries []templateEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
