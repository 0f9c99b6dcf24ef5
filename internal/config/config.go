package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config represents the refract configuration.
type Config struct {
	Provider   string         `json:"provider" validate:"required"`
	Model      string         `json:"model"`
	Format     string         `json:"format" validate:"oneof=text json markdown sarif github"`
	FailOn     string         `json:"failOn" validate:"oneof=none info minor major"`
	RulesFile  string         `json:"rulesFile,omitempty"`
	Include    []string       `json:"include"`
	Exclude    []string       `json:"exclude"`
	LineLength int            `json:"lineLength" validate:"gt=0"`
	Semantic   SemanticConfig `json:"semantic"`
	Cache      CacheConfig    `json:"cache"`
	Privacy    PrivacyConfig  `json:"privacy"`
}

// SemanticConfig controls the LLM-backed review stage.
type SemanticConfig struct {
	Enabled           bool    `json:"enabled"`
	MaxLines          int     `json:"maxLines" validate:"gt=0"`
	TimeoutSeconds    int     `json:"timeoutSeconds" validate:"gt=0"`
	Temperature       float64 `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int     `json:"maxTokens" validate:"gt=0"`
	RequestsPerMinute int     `json:"requestsPerMinute" validate:"gte=0"`
}

// CacheConfig controls caching of semantic responses.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" validate:"gte=0"`
}

// PrivacyConfig controls redaction before text is sent to a provider.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:   "anthropic",
		Format:     "text",
		FailOn:     "major",
		Include:    []string{"**/*.java"},
		Exclude:    []string{"**/build/**", "**/target/**", "**/generated/**"},
		LineLength: 120,
		Semantic: SemanticConfig{
			MaxLines:       300,
			TimeoutSeconds: 30,
			MaxTokens:      1000,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "*secrets*", "**/*.pem"},
		},
	}
}

var validate = validator.New()

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for refract.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "refract"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "refract"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "refract"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "refract"), nil
	default:
		return filepath.Join(home, ".config", "refract"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults overlaid with the config file. Keys absent
// from the file keep their default, including booleans. A missing file is
// not an error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags and uses the same keys as SetField.
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps environment variables to config keys. LLM_PROVIDER is read
// first so REFRACT_PROVIDER wins when both are set.
var envKeys = []struct {
	env string
	key string
}{
	{"LLM_PROVIDER", "provider"},
	{"REFRACT_PROVIDER", "provider"},
	{"REFRACT_MODEL", "model"},
	{"REFRACT_FORMAT", "format"},
	{"REFRACT_FAIL_ON", "failOn"},
	{"REFRACT_RULES_FILE", "rulesFile"},
	{"REFRACT_LINE_LENGTH", "lineLength"},
	{"REFRACT_LLM", "semantic.enabled"},
	{"REFRACT_SEMANTIC_MAX_LINES", "semantic.maxLines"},
	{"REFRACT_SEMANTIC_TIMEOUT", "semantic.timeoutSeconds"},
	{"REFRACT_CACHE", "cache.enabled"},
	{"REFRACT_CACHE_DIR", "cache.dir"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for _, key := range Keys() {
		v, ok := overrides[key]
		if !ok || v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists every key SetField accepts, in display order.
func Keys() []string {
	return []string{
		"provider", "model", "format", "failOn", "rulesFile",
		"include", "exclude", "lineLength",
		"semantic.enabled", "semantic.maxLines", "semantic.timeoutSeconds",
		"semantic.temperature", "semantic.maxTokens", "semantic.requestsPerMinute",
		"cache.enabled", "cache.dir", "cache.ttlSeconds",
		"privacy.redactSecrets", "privacy.redactPaths",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "rulesFile":
		cfg.RulesFile = value
	case "include":
		cfg.Include = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "lineLength":
		return setInt(&cfg.LineLength, key, value)
	case "semantic.enabled":
		return setBool(&cfg.Semantic.Enabled, key, value)
	case "semantic.maxLines":
		return setInt(&cfg.Semantic.MaxLines, key, value)
	case "semantic.timeoutSeconds":
		return setInt(&cfg.Semantic.TimeoutSeconds, key, value)
	case "semantic.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		cfg.Semantic.Temperature = f
	case "semantic.maxTokens":
		return setInt(&cfg.Semantic.MaxTokens, key, value)
	case "semantic.requestsPerMinute":
		return setInt(&cfg.Semantic.RequestsPerMinute, key, value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
