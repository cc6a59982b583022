// Package config loads chatburn configuration from file, env, and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/chatburn/internal/budget"
	"github.com/theirongolddev/chatburn/internal/pricing"
)

// Config holds all chatburn configuration. It is constructed once in cmd
// and passed by value into the components that need it.
type Config struct {
	Chat    ChatConfig       `toml:"chat"`
	Budget  BudgetConfig     `toml:"budget"`
	API     APIConfig        `toml:"api"`
	Storage StorageConfig    `toml:"storage"`
	Logging LoggingConfig    `toml:"logging"`
	Pricing PricingOverrides `toml:"pricing"`
}

// ChatConfig holds model and session preferences.
type ChatConfig struct {
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	UserID      string  `toml:"user_id"`
}

// BudgetConfig holds spend caps in USD. Zero means unlimited.
type BudgetConfig struct {
	SessionUSD       float64 `toml:"session_usd"`
	DailyUSD         float64 `toml:"daily_usd"`
	WarningThreshold float64 `toml:"warning_threshold"`
}

// APIConfig holds completion service settings.
type APIConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// StorageConfig holds data file locations.
type StorageConfig struct {
	LedgerPath string `toml:"ledger_path,omitempty"`
	HistoryDB  string `toml:"history_db,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides.
type ModelPricingOverride struct {
	InputPerMTok       *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok      *float64 `toml:"output_per_mtok,omitempty"`
	CachedInputPerMTok *float64 `toml:"cached_input_per_mtok,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Chat: ChatConfig{
			Model:       "gpt-3.5-turbo",
			MaxTokens:   500,
			Temperature: 0.7,
			UserID:      "default",
		},
		Budget: BudgetConfig{
			WarningThreshold: budget.DefaultWarningThreshold,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "chatburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "chatburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "chatburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "chatburn")
}

// Load reads the config file at path (ConfigPath when empty), applies env
// overrides, and fills derived defaults. Missing file means defaults.
func Load(path string) (Config, error) {
	// Best effort: a .env in the working directory feeds the env overrides.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)

	if cfg.Storage.LedgerPath == "" {
		cfg.Storage.LedgerPath = filepath.Join(DataDir(), "costs.json")
	}
	if cfg.Storage.HistoryDB == "" {
		cfg.Storage.HistoryDB = filepath.Join(DataDir(), "history.db")
	}

	return cfg, nil
}

// applyEnv layers environment variables over file values. The env keys
// match the ones the shell-facing docs advertise.
func applyEnv(cfg *Config) {
	cfg.Chat.Model = getEnvString("CHAT_MODEL", cfg.Chat.Model)
	cfg.Chat.MaxTokens = getEnvInt("CHAT_MAX_TOKENS", cfg.Chat.MaxTokens)
	cfg.Chat.Temperature = getEnvFloat("CHAT_TEMPERATURE", cfg.Chat.Temperature)
	cfg.Chat.UserID = getEnvString("CHAT_USER_ID", cfg.Chat.UserID)
	cfg.Budget.SessionUSD = getEnvFloat("CHAT_SESSION_BUDGET", cfg.Budget.SessionUSD)
	cfg.Budget.DailyUSD = getEnvFloat("CHAT_DAILY_BUDGET", cfg.Budget.DailyUSD)
	cfg.Budget.WarningThreshold = getEnvFloat("CHAT_BUDGET_WARNING", cfg.Budget.WarningThreshold)
	cfg.Storage.LedgerPath = getEnvString("CHAT_COST_LOG_FILE", cfg.Storage.LedgerPath)
	cfg.Logging.Level = getEnvString("CHAT_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = getEnvString("CHAT_LOG_FILE", cfg.Logging.File)
	cfg.API.BaseURL = getEnvString("OPENAI_BASE_URL", cfg.API.BaseURL)
}

// Save writes the config to disk at the default location.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetAPIKey returns the completion API key from env var or config, in that order.
func GetAPIKey(cfg Config) string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return cfg.API.APIKey
}

// PricingTable builds the pricing table with the config's overrides applied.
func PricingTable(cfg Config) pricing.Table {
	if len(cfg.Pricing.Overrides) == 0 {
		return pricing.Default()
	}
	overrides := make(map[string]pricing.Override, len(cfg.Pricing.Overrides))
	for model, o := range cfg.Pricing.Overrides {
		overrides[model] = pricing.Override{
			InputPerMTok:       o.InputPerMTok,
			OutputPerMTok:      o.OutputPerMTok,
			CachedInputPerMTok: o.CachedInputPerMTok,
		}
	}
	return pricing.NewTable(overrides)
}

// Validate rejects configurations that cannot produce costed sessions.
func Validate(cfg Config, table pricing.Table) error {
	if !table.Has(cfg.Chat.Model) {
		return fmt.Errorf("configured model %q has no pricing entry", cfg.Chat.Model)
	}
	if cfg.Chat.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", cfg.Chat.MaxTokens)
	}
	if cfg.Budget.WarningThreshold <= 0 || cfg.Budget.WarningThreshold >= 1 {
		return fmt.Errorf("warning_threshold must be in (0, 1), got %.2f", cfg.Budget.WarningThreshold)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
