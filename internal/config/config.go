// Package config loads settings from file and environment and persists
// the one piece of state that survives sessions: the sheet URL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig
	Sheet  SheetConfig
	Gemini GeminiConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string
}

// SheetConfig holds the connected spreadsheet source.
type SheetConfig struct {
	URL string
}

// GeminiConfig holds the model provider settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Load reads configuration from file and env. Env var overrides use
// prefix SMARTSHEET_ (e.g. SMARTSHEET_GEMINI_API_KEY).
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("sheet.url", "")
	v.SetDefault("gemini.api_key", os.Getenv("GEMINI_API_KEY"))

	v.SetConfigType("yaml")

	if cfgPath := os.Getenv("SMARTSHEET_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(defaultConfigDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SMARTSHEET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees env values for keys viper already knows about.
	v.BindEnv("server.addr")
	v.BindEnv("sheet.url")
	v.BindEnv("gemini.api_key")

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// SaveSheetURL persists the connected source URL so the next session
// reconnects automatically. Other settings are left to env vars.
func SaveSheetURL(url string) error {
	path := os.Getenv("SMARTSHEET_CONFIG")
	if path == "" {
		path = filepath.Join(defaultConfigDir(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	_ = v.ReadInConfig()
	v.Set("sheet.url", url)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "smartsheet")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "smartsheet")
}
