// Package config provides configuration management for mpcatalog.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/mpcatalog"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".local/share/mpcatalog"
)

const (
	defaultSeedURL   = "http://www.mpcatalog.net/CatalogRepo"
	defaultReferer   = "mpcatalog"
	defaultUserAgent = "Community"
	defaultTimeout   = "20s"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey    = errors.New("invalid configuration key")
	ErrInvalidValue  = errors.New("invalid configuration value")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// valueRules holds validator tags checked by Set for keys with constrained
// values.
var valueRules = map[string]string{
	"catalog.seed_url":    "required,url",
	"catalog.repo_base":   "omitempty,url",
	"catalog.referer":     "required",
	"catalog.user_agent":  "required",
	"catalog.concurrency": "number",
	"catalog.rate_limit":  "numeric",
	"catalog.retries":     "number",
	"proxy.address":       "omitempty,url",
	"storage.inventory":   "required",
}

// Config represents the full mpcatalog configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog" validate:"required"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
}

// CatalogConfig controls how the remote catalog is located and fetched.
type CatalogConfig struct {
	SeedURL     string        `mapstructure:"seed_url" validate:"required,url"`
	RepoBase    string        `mapstructure:"repo_base" validate:"omitempty,url"`
	Referer     string        `mapstructure:"referer" validate:"required"`
	UserAgent   string        `mapstructure:"user_agent" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=0"`
	RateLimit   float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Retries     int           `mapstructure:"retries" validate:"gte=0,lte=10"`
}

// ProxyConfig holds outbound proxy settings. The password lives in the OS
// keychain, keyed by username.
type ProxyConfig struct {
	Address  string `mapstructure:"address" validate:"omitempty,url"`
	Username string `mapstructure:"username"`
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	Inventory string `mapstructure:"inventory" validate:"required"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// MPCATALOG_CATALOG_SEED_URL overrides catalog.seed_url, and so on.
	v.SetEnvPrefix("MPCATALOG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.inventory", "MPCATALOG_INVENTORY")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("catalog.seed_url", defaultSeedURL)
	l.v.SetDefault("catalog.repo_base", "")
	l.v.SetDefault("catalog.referer", defaultReferer)
	l.v.SetDefault("catalog.user_agent", defaultUserAgent)
	l.v.SetDefault("catalog.timeout", defaultTimeout)
	l.v.SetDefault("catalog.concurrency", 0)
	l.v.SetDefault("catalog.rate_limit", 0)
	l.v.SetDefault("catalog.retries", 0)
	l.v.SetDefault("proxy.address", "")
	l.v.SetDefault("proxy.username", "")
	l.v.SetDefault("storage.inventory", "~/"+DefaultDataDir+"/installed.json")
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Storage.Inventory = l.expandPath(cfg.Storage.Inventory)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// AllSettings returns every configuration value as a nested map.
func (l *Loader) AllSettings() map[string]any {
	return l.v.AllSettings()
}

// Set sets a configuration value by dot-notation key and writes the file.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateValue(key, value); err != nil {
		return err
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// ValidateValue checks a raw value before it is written to key.
func ValidateValue(key, value string) error {
	if key == "catalog.timeout" {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration such as 20s", ErrInvalidValue, key)
		}
		return nil
	}

	rule, ok := valueRules[key]
	if !ok {
		return nil
	}
	if err := validate.Var(value, rule); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
	}
	return nil
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		// time.Duration is not a struct, so only sections recurse.
		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
