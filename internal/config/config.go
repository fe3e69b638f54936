package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/demandcast/internal/forecast"
)

// Config holds all demandcast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Gemini     GeminiConfig     `toml:"gemini"`
	Catalog    CatalogOverrides `toml:"catalog"`
}

// GeneralConfig holds forecasting preferences.
type GeneralConfig struct {
	DefaultModel string  `toml:"default_model"`
	Seed         *uint64 `toml:"seed,omitempty"`
	LabelMode    string  `toml:"label_mode"`
	KeepHistory  bool    `toml:"keep_history"`
	DataDir      string  `toml:"data_dir,omitempty"`
}

// ServerConfig holds settings for `demandcast serve`.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	InboxDir     string `toml:"inbox_dir,omitempty"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// GeminiConfig holds settings for the optional narrative client.
type GeminiConfig struct {
	APIKey string `toml:"api_key,omitempty"`
	Model  string `toml:"model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultModel: forecast.ARIMA.String(),
			LabelMode:    string(forecast.LabelContinue),
			KeepHistory:  true,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  15,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash-lite",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "demandcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "demandcast")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", ConfigPath(), err)
	}

	return cfg, nil
}

// Save writes the config to disk.
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

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate checks values that would otherwise fail later at run time.
func (c Config) Validate() error {
	var errs []error
	if _, err := forecast.ParseModel(c.General.DefaultModel); err != nil {
		errs = append(errs, fmt.Errorf("general.default_model: %w", err))
	}
	if _, err := forecast.ParseLabelMode(c.General.LabelMode); err != nil {
		errs = append(errs, fmt.Errorf("general.label_mode: %w", err))
	}
	if c.Server.IntervalSec < 0 {
		errs = append(errs, fmt.Errorf("server.interval_sec must not be negative"))
	}
	if c.Server.EventsBuffer < 0 {
		errs = append(errs, fmt.Errorf("server.events_buffer must not be negative"))
	}
	for name, o := range c.Catalog.Overrides {
		if _, err := forecast.ParseModel(name); err != nil {
			errs = append(errs, fmt.Errorf("catalog.overrides: %w", err))
		}
		for field, v := range map[string]*float64{"accuracy": o.Accuracy, "f1_score": o.F1Score} {
			if v != nil && (*v < 0 || *v > 1) {
				errs = append(errs, fmt.Errorf("catalog.overrides.%q.%s = %v, want within [0,1]", name, field, *v))
			}
		}
	}
	return errors.Join(errs...)
}

// Model returns the configured default model, falling back to ARIMA.
func (g GeneralConfig) Model() forecast.Model {
	m, err := forecast.ParseModel(g.DefaultModel)
	if err != nil {
		return forecast.ARIMA
	}
	return m
}

// Labels returns the configured label mode, falling back to continue.
func (g GeneralConfig) Labels() forecast.LabelMode {
	m, err := forecast.ParseLabelMode(g.LabelMode)
	if err != nil {
		return forecast.LabelContinue
	}
	return m
}

// GetGeminiAPIKey returns the API key from env var or config, in that order.
func GetGeminiAPIKey(cfg Config) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return cfg.Gemini.APIKey
}

// GetServerAddr returns the listen address from env var or config, in that order.
func GetServerAddr(cfg Config) string {
	if addr := os.Getenv("DEMANDCAST_ADDR"); addr != "" {
		return addr
	}
	return cfg.Server.Addr
}
