package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/funcscaffold/funcscaffold/internal/backup"
	"github.com/funcscaffold/funcscaffold/internal/config"
	"github.com/funcscaffold/funcscaffold/internal/feed"
	"github.com/funcscaffold/funcscaffold/internal/store"
	"github.com/funcscaffold/funcscaffold/internal/templates"
)

var (
	doctorRuntime string
	checkBundle   string
)

func init() {
	doctorCmd.Flags().StringVar(&doctorRuntime, "runtime", "~4", "Runtime version to check the feed and backup for")
	doctorCmd.Flags().StringVar(&checkBundle, "check-bundle", "", "Validate a bundle directory laid out as <schema>/<version>/*.json")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the template sources",
	Long:  `Check the configuration, the cache store, the template feed and the bundled backup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if checkBundle != "" {
			return runBundleCheck(w, backup.NewLoader(os.DirFS(checkBundle)), checkBundle)
		}

		settings, err := config.Current()
		if err != nil {
			return err
		}
		runConfigCheck(w)
		runStoreCheck(cmd.Context(), w, settings)
		runFeedCheck(cmd.Context(), w, settings, doctorRuntime)
		return runBundleCheck(w, backup.Embedded(), "bundled backup")
	},
}

func runConfigCheck(w io.Writer) {
	fmt.Fprintln(w, "Config check:")
	if _, err := os.Stat(config.FilePath()); err != nil {
		fmt.Fprintf(w, "  [INFO] %s not found, using defaults\n", config.FilePath())
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s\n", config.FilePath())
}

func runStoreCheck(ctx context.Context, w io.Writer, settings *config.Settings) {
	fmt.Fprintln(w, "Store check:")
	if settings.Store.Backend != config.BackendRedis {
		fmt.Fprintf(w, "  [ OK ] file store at %s\n", settings.Store.Path)
		return
	}
	rs := store.NewRedisStore(store.RedisOptions{
		Address:  settings.Redis.Address,
		Password: settings.Redis.Password,
		DB:       settings.Redis.DB,
	})
	defer rs.Close()
	if err := rs.Ping(ctx); err != nil {
		fmt.Fprintf(w, "  [FAIL] redis at %s: %v (the file store is used instead)\n", settings.Redis.Address, err)
		return
	}
	fmt.Fprintf(w, "  [ OK ] redis at %s\n", settings.Redis.Address)
}

func runFeedCheck(ctx context.Context, w io.Writer, settings *config.Settings, runtime string) {
	fmt.Fprintln(w, "Feed check:")
	client := feed.New(settings.Feed.URL, feed.WithTimeout(settings.Feed.Timeout))
	version, err := client.LatestVersion(ctx, runtime)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v (cached or bundled templates are used instead)\n", client.URL(), err)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s: release %s for runtime %s\n", client.URL(), version, runtime)
}

// runBundleCheck parses every bundle the loader holds and reports how many
// templates survive validation.
func runBundleCheck(w io.Writer, loader *backup.Loader, label string) error {
	fmt.Fprintf(w, "Bundle check (%s):\n", label)
	failed := 0
	for _, schema := range []templates.SchemaVersion{templates.SchemaV1, templates.SchemaV2} {
		versions, err := loader.Versions(schema)
		if err != nil || len(versions) == 0 {
			fmt.Fprintf(w, "  [INFO] no %s bundles\n", schema)
			continue
		}
		for _, v := range versions {
			bundle, err := loader.LoadVersion(schema, v.Original())
			if err == nil {
				var set *templates.TemplateSet
				set, err = templates.ParseBundle(bundle)
				if err == nil {
					fmt.Fprintf(w, "  [ OK ] %s %s: %d template(s), %d skipped\n", schema, v.Original(), len(set.FunctionTemplates), set.Skipped)
					continue
				}
			}
			failed++
			fmt.Fprintf(w, "  [FAIL] %s %s: %v\n", schema, v.Original(), err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d bundle(s) failed to parse", failed)
	}
	return nil
}
