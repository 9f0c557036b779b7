package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/funcscaffold/funcscaffold/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyFeedURL         = "feed.url"
	KeyFeedTimeout     = "feed.timeout"
	KeyLocale          = "locale"
	KeyStoreBackend    = "store.backend"
	KeyStorePath       = "store.path"
	KeyRedisAddress    = "redis.address"
	KeyRedisPassword   = "redis.password"
	KeyRedisDB         = "redis.db"
	KeyLogType         = "log.type"
	KeyLogLevel        = "log.level"
	KeyTemplatesSchema = "templates.schema"
)

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// DefaultFeedTimeout bounds a single feed request. Tier fallback in the
// template cache relies on it.
const DefaultFeedTimeout = 15 * time.Second

// Settings is the typed view over the loaded configuration.
type Settings struct {
	Feed struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"feed"`
	Locale string `mapstructure:"locale"`
	Store  struct {
		Backend string `mapstructure:"backend"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"store"`
	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Log struct {
		Type  string `mapstructure:"type"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Templates struct {
		Schema string `mapstructure:"schema"`
	} `mapstructure:"templates"`
}

// Dir returns the path to the config directory (~/.funcscaffold/).
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.funcscaffold/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// setDefaults registers the fallback value of every known key.
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyFeedURL, branding.FeedURL())
	v.SetDefault(KeyFeedTimeout, DefaultFeedTimeout)
	v.SetDefault(KeyLocale, "en")
	v.SetDefault(KeyStoreBackend, BackendFile)
	v.SetDefault(KeyStorePath, filepath.Join(Dir(), "template-cache.json"))
	v.SetDefault(KeyRedisAddress, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyLogType, "tint")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyTemplatesSchema, "all")
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	setDefaults(viper.GetViper())
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current decodes the loaded configuration into Settings.
func Current() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if s.Feed.Timeout <= 0 {
		s.Feed.Timeout = DefaultFeedTimeout
	}
	return &s, nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
