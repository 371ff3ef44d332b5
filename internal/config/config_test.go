package config

import (
	"testing"
	"time"
)

// mapBackend is an in-memory ConfigBackend for tests.
type mapBackend struct {
	data map[string]any
}

func (b *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (b *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	return v.(int), true, nil
}

func (b *mapBackend) SetString(key, val string) error { b.data[key] = val; return nil }
func (b *mapBackend) SetInt(key string, val int) error { b.data[key] = val; return nil }
func (b *mapBackend) Delete(key string) error          { delete(b.data, key); return nil }

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("Gemini.APIKey = %q, want empty (optional)", cfg.Gemini.APIKey)
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("Chat.HistoryLimit = %d, want 10", cfg.Chat.HistoryLimit)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.GeminiTimeout() != 10*time.Second {
		t.Errorf("GeminiTimeout = %v, want 10s", cfg.GeminiTimeout())
	}
}

func TestBackendValuesApply(t *testing.T) {
	cfg, err := loadWith(&mapBackend{data: map[string]any{
		"server.port":        8080,
		"gemini.model":       "gemini-1.5-pro",
		"chat.history_limit": 25,
	}})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Chat.HistoryLimit != 25 {
		t.Errorf("Chat.HistoryLimit = %d, want 25", cfg.Chat.HistoryLimit)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	t.Setenv("SHOPMATE_SERVER_PORT", "9090")
	t.Setenv("SHOPMATE_GEMINI_API_KEY", "env-secret")
	t.Setenv("SHOPMATE_LOG_LEVEL", "debug")

	cfg, err := loadWith(&mapBackend{data: map[string]any{
		"server.port": 8080,
	}})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "env-secret" {
		t.Errorf("Gemini.APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestInvalidEnvIntKeepsDefault(t *testing.T) {
	t.Setenv("SHOPMATE_SERVER_PORT", "not-a-port")

	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default 5000", cfg.Server.Port)
	}
}

func TestGeminiTimeoutFallback(t *testing.T) {
	cfg := Config{Gemini: GeminiConfig{Timeout: "banana"}}
	if cfg.GeminiTimeout() != 10*time.Second {
		t.Errorf("GeminiTimeout = %v, want fallback 10s", cfg.GeminiTimeout())
	}

	cfg.Gemini.Timeout = "3s"
	if cfg.GeminiTimeout() != 3*time.Second {
		t.Errorf("GeminiTimeout = %v, want 3s", cfg.GeminiTimeout())
	}
}

func TestSecretKeysHiddenFromShowAll(t *testing.T) {
	cfg := defaults()
	cfg.Gemini.APIKey = "super-secret"

	for _, info := range ShowAll(cfg) {
		if info.Key == "gemini.api_key" {
			t.Error("secret key listed by ShowAll")
		}
		if info.Value == "super-secret" {
			t.Errorf("secret value leaked under key %s", info.Key)
		}
	}
}
