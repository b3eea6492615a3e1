package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Provider       string `mapstructure:"provider"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	APIBase        string `mapstructure:"api_base"`
	Timeout        int    `mapstructure:"timeout"`
	MaxDiffBytes   int    `mapstructure:"max_diff_bytes"`
	PromptTemplate string `mapstructure:"prompt_template"`
	LogLevel       string `mapstructure:"log_level"`

	// APIKeyFromEnv reports that APIKey came from the provider's environment variable.
	APIKeyFromEnv bool `mapstructure:"-"`
}

const (
	DefaultProvider     = "gemini"
	DefaultMaxDiffBytes = 16000
	DefaultLogLevel     = "info"
	DefaultConfigName   = "config"
	DefaultConfigDir    = "gpush"
	EnvPrefix           = "GPUSH"
	DotEnvFile          = ".env"
)

var suggestedProviders = []string{"gemini", "openai"}

// providerKeyEnv maps a provider to the conventional variable holding its key.
var providerKeyEnv = map[string]string{
	"gemini": "GOOGLE_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// keys that `gpush config set` accepts
var settableKeys = []string{
	"provider", "model", "api_key", "api_base", "timeout", "max_diff_bytes", "prompt_template", "log_level",
}

// InitConfig loads .env from the working directory, then the config file, creating it when missing.
func InitConfig(cfgFile string) error {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return err
	}

	configPath, err := resolveConfigPath(cfgFile)
	if err != nil {
		return err
	}
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("provider", DefaultProvider)
	viper.SetDefault("model", "")
	viper.SetDefault("api_key", "")
	viper.SetDefault("api_base", "")
	viper.SetDefault("timeout", 0)
	viper.SetDefault("max_diff_bytes", DefaultMaxDiffBytes)
	viper.SetDefault("prompt_template", "")
	viper.SetDefault("log_level", DefaultLogLevel)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("failed to create configuration directory: %w", err)
		}
		if err := viper.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := os.Chmod(configPath, 0o600); err != nil {
		return fmt.Errorf("failed to secure configuration file: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from path when it exists. Variables already set win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env, nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to find home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, DefaultConfigName+".yaml"), nil
}

// GetConfig returns the current configuration. An empty api_key falls back to the
// provider's conventional environment variable.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.APIKey == "" {
		cfg.APIKey = EnvAPIKey(cfg.Provider)
		cfg.APIKeyFromEnv = cfg.APIKey != ""
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %d", cfg.Timeout)
	}
	return cfg, nil
}

// Defaults returns the configuration used when the stored one cannot be loaded.
func Defaults() *Config {
	return &Config{
		Provider:     DefaultProvider,
		MaxDiffBytes: DefaultMaxDiffBytes,
		LogLevel:     DefaultLogLevel,
	}
}

// EnvAPIKey returns the provider's key from its conventional environment variable.
func EnvAPIKey(provider string) string {
	env, ok := providerKeyEnv[strings.ToLower(provider)]
	if !ok {
		return ""
	}
	return os.Getenv(env)
}

func SetConfigValue(key string, value any) {
	viper.Set(key, value)
}

// SaveConfig saves current configuration
func SaveConfig() error {
	if err := viper.WriteConfig(); err != nil {
		return err
	}
	if path := viper.ConfigFileUsed(); path != "" {
		return os.Chmod(path, 0o600)
	}
	return nil
}

func IsValidProvider(provider string) bool {
	_, ok := providerKeyEnv[strings.ToLower(provider)]
	return ok
}

func IsSettableKey(key string) bool {
	for _, k := range settableKeys {
		if k == key {
			return true
		}
	}
	return false
}

func GetSuggestedProviders() []string {
	return suggestedProviders
}

func SettableKeys() []string {
	return settableKeys
}

// APIKeyEnv returns the environment variable consulted for provider's key.
func APIKeyEnv(provider string) string {
	return providerKeyEnv[strings.ToLower(provider)]
}
