package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/risk"
)

const (
	DefaultBackendURL = "http://127.0.0.1:8000/api/check"
	DefaultQueryParam = "url"
	DefaultDateLayout = "Jan 2, 2006"
	DefaultServerAddr = ":8080"
	EnvPrefix         = "LINKGUARD"
)

type BackendConfig struct {
	URL        string        `mapstructure:"url" json:"url" yaml:"url"`
	QueryParam string        `mapstructure:"query_param" json:"query_param" yaml:"query_param"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

type ReportConfig struct {
	DateLayout string `mapstructure:"date_layout" json:"date_layout" yaml:"date_layout"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr"`
}

type HandoffConfig struct {
	File string `mapstructure:"file" json:"file" yaml:"file"`
}

// NotifyConfig controls the Discord alert hook. Credentials come from the
// environment: DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN, or DISCORD_TOKEN
// with DISCORD_CHANNEL_ID.
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	MinTier string `mapstructure:"min_tier" json:"min_tier" yaml:"min_tier"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`
	Format     string `mapstructure:"format" json:"format" yaml:"format"`
	File       string `mapstructure:"file" json:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

type Config struct {
	Backend BackendConfig `mapstructure:"backend" json:"backend" yaml:"backend"`
	Report  ReportConfig  `mapstructure:"report" json:"report" yaml:"report"`
	Server  ServerConfig  `mapstructure:"server" json:"server" yaml:"server"`
	Handoff HandoffConfig `mapstructure:"handoff" json:"handoff" yaml:"handoff"`
	Notify  NotifyConfig  `mapstructure:"notify" json:"notify" yaml:"notify"`
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
}

// ConfigOptions holds configuration loading options
type ConfigOptions struct {
	ConfigFile  string
	ConfigPath  string
	ConfigName  string
	ConfigType  string
	EnvPrefix   string
	EnvFiles    []string
	DefaultsMap map[string]interface{}
}

// Defaults returns the built-in value of every key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"backend.url":         DefaultBackendURL,
		"backend.query_param": DefaultQueryParam,
		"backend.timeout":     "0s",
		"report.date_layout":  DefaultDateLayout,
		"server.addr":         DefaultServerAddr,
		"handoff.file":        "",
		"notify.enabled":      false,
		"notify.min_tier":     string(risk.High),
		"log.level":           "info",
		"log.format":          "text",
		"log.file":            "",
		"log.max_size_mb":     10,
		"log.max_backups":     3,
		"log.max_age_days":    28,
		"log.compress":        false,
	}
}

// Load reads configuration from defaults, an optional config file, .env
// files and LINKGUARD_ environment variables, in increasing priority.
// An explicit configFile that cannot be read is an error; a missing file in
// the search paths is not.
func Load(configFile string) (*Config, error) {
	v, err := NewViperConfigWithOptions(ConfigOptions{
		ConfigFile:  configFile,
		ConfigPath:  "./config",
		ConfigName:  "linkguard",
		ConfigType:  "yaml",
		EnvPrefix:   EnvPrefix,
		EnvFiles:    []string{".env"},
		DefaultsMap: Defaults(),
	})
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// NewViperConfigWithOptions creates a Viper configuration with custom options
func NewViperConfigWithOptions(opts ConfigOptions) (*viper.Viper, error) {
	loadEnvFiles(opts.EnvFiles)

	v := viper.New()
	v.SetConfigType(opts.ConfigType)

	// Set defaults if provided
	for key, value := range opts.DefaultsMap {
		v.SetDefault(key, value)
	}

	// Enable environment variable support
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
		log.Infof("Loaded config file: %s", v.ConfigFileUsed())
		return v, nil
	}

	// Add multiple search paths for flexibility
	configPaths := []string{opts.ConfigPath}
	if opts.ConfigPath != "./config" {
		configPaths = append(configPaths, "./config")
	}
	configPaths = append(configPaths, "/etc/linkguard", "$HOME/.linkguard")

	for _, path := range configPaths {
		v.AddConfigPath(path)
	}
	v.SetConfigName(opts.ConfigName)

	log.Debugf("Searching for config file: %s in paths: %v", opts.ConfigName, configPaths)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Debug("No config file found, using defaults and environment")
			return v, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Infof("Loaded config file: %s", v.ConfigFileUsed())
	return v, nil
}

func loadEnvFiles(files []string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// Existing environment variables win over the file.
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).Warnf("Failed to load env file %s", f)
		}
	}
}

// FromViper decodes and validates a populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Backend.URL = strings.TrimSpace(cfg.Backend.URL)
	cfg.Backend.QueryParam = strings.TrimSpace(cfg.Backend.QueryParam)
	cfg.Notify.MinTier = strings.ToLower(strings.TrimSpace(cfg.Notify.MinTier))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the rest of the application depends on.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return apperrors.NewConfigError("backend.url", c.Backend.URL, "must not be empty")
	}
	if c.Backend.QueryParam == "" {
		return apperrors.NewConfigError("backend.query_param", c.Backend.QueryParam, "must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return apperrors.NewConfigError("backend.timeout", c.Backend.Timeout, "must not be negative")
	}
	if _, ok := risk.ParseTier(c.Notify.MinTier); !ok {
		return apperrors.NewConfigError("notify.min_tier", c.Notify.MinTier, "must be one of low, medium, high")
	}
	if c.Report.DateLayout == "" {
		c.Report.DateLayout = DefaultDateLayout
	}
	return nil
}

// Public returns the settings safe to expose over the API.
func (c *Config) Public() map[string]interface{} {
	return map[string]interface{}{
		"backend": map[string]interface{}{
			"url":         c.Backend.URL,
			"query_param": c.Backend.QueryParam,
			"timeout":     c.Backend.Timeout.String(),
		},
		"report":  map[string]interface{}{"date_layout": c.Report.DateLayout},
		"handoff": map[string]interface{}{"enabled": c.Handoff.File != ""},
		"notify": map[string]interface{}{
			"enabled":  c.Notify.Enabled,
			"min_tier": c.Notify.MinTier,
		},
	}
}
