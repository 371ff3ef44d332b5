package config

import (
	"time"
)

type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Chat    ChatConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout string
}

type StorageConfig struct {
	DataDir string
}

type ChatConfig struct {
	HistoryLimit int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-1.5-flash",
			Timeout: "10s",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Chat: ChatConfig{
			HistoryLimit: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/shopmate/config.json, then applies SHOPMATE_*
// environment overrides. The Gemini API key is env-only and optional;
// without it the assistant runs on deterministic matching alone.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// GeminiTimeout parses the configured timeout, falling back to 10s on
// malformed values.
func (c Config) GeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
