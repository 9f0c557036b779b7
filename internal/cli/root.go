package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funcscaffold/funcscaffold/internal/branding"
	"github.com/funcscaffold/funcscaffold/internal/config"
	"github.com/funcscaffold/funcscaffold/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	logLevelFlag string
	logTypeFlag  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logTypeFlag, "log-type", "", "Log format: tint, text or json (default from config)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates Azure Functions from the official function templates.
Templates come from the online feed, a local cache, or the bundled backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		settings, err := config.Current()
		if err != nil {
			return err
		}
		logType, level := settings.Log.Type, settings.Log.Level
		if logTypeFlag != "" {
			logType = logTypeFlag
		}
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		if err := logging.Initialize(cmd.ErrOrStderr(), logType, level); err != nil {
			return fmt.Errorf("configuring logging: %w", err)
		}
		return nil
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
