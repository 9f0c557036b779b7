// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed, so a fork only has to edit one document.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	FeedURL     string `yaml:"feed_url"`
	UserAgent   string `yaml:"user_agent"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "funcscaffold",
			DisplayName: "FuncScaffold",
			Description: "Scaffold serverless function projects from versioned templates",
			HomeDir:     ".funcscaffold",
			EnvPrefix:   "FUNCSCAFFOLD",
			FeedURL:     "https://functionscdn.azureedge.net/public/cli-feed-v4.json",
			UserAgent:   "funcscaffold-templates",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "funcscaffold").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".funcscaffold").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "FUNCSCAFFOLD").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// FeedURL returns the default template feed document URL.
func FeedURL() string { load(); return defaults.FeedURL }

// UserAgent returns the User-Agent sent with feed requests.
func UserAgent() string { load(); return defaults.UserAgent }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "FUNCSCAFFOLD_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
