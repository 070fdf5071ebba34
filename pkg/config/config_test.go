package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Server.Port)
	}
	if cfg.Completion.Model != "gpt-4o-mini" {
		t.Fatalf("default model = %q", cfg.Completion.Model)
	}
	if cfg.Completion.Timeout.Duration() != 30*time.Second {
		t.Fatalf("default timeout = %v", cfg.Completion.Timeout.Duration())
	}
	if cfg.Limits.MaxMessageBytes.Int64() != 64*1024 {
		t.Fatalf("default max message bytes = %d", cfg.Limits.MaxMessageBytes.Int64())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  address: "127.0.0.1"
  port: 9090
  db_path: "/tmp/chatd-test"
security:
  api_keys:
    backend: ["bk1", "bk2"]
    frontend: ["fk1"]
completion:
  api_key: "sk-test"
  model: "gpt-4o"
  timeout: "45s"
  max_tokens: 500
limits:
  max_message_bytes: "64KB"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.Server.DBPath != "/tmp/chatd-test" {
		t.Fatalf("db path = %q", cfg.Server.DBPath)
	}
	if len(cfg.Security.APIKeys.Backend) != 2 || len(cfg.Security.APIKeys.Frontend) != 1 {
		t.Fatalf("keys = %+v", cfg.Security.APIKeys)
	}
	if cfg.Completion.Timeout.Duration() != 45*time.Second {
		t.Fatalf("timeout = %v", cfg.Completion.Timeout.Duration())
	}
	if cfg.Completion.MaxTokens != 500 {
		t.Fatalf("max tokens = %d", cfg.Completion.MaxTokens)
	}
	if cfg.Limits.MaxMessageBytes.Int64() != 64000 {
		t.Fatalf("max message bytes = %d", cfg.Limits.MaxMessageBytes.Int64())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHATD_ADDR", ":7070")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("CHATD_BACKEND_KEYS", "k1, k2 ,")
	t.Setenv("CHATD_COMPLETION_TIMEOUT", "10s")

	cfg, envUsed, err := LoadEffective("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !envUsed {
		t.Fatalf("expected envUsed")
	}
	if cfg.Addr() != ":7070" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.Completion.APIKey != "sk-env" {
		t.Fatalf("api key = %q", cfg.Completion.APIKey)
	}
	if len(cfg.Security.APIKeys.Backend) != 2 || cfg.Security.APIKeys.Backend[1] != "k2" {
		t.Fatalf("backend keys = %v", cfg.Security.APIKeys.Backend)
	}
	if cfg.Completion.Timeout.Duration() != 10*time.Second {
		t.Fatalf("timeout = %v", cfg.Completion.Timeout.Duration())
	}
}

func TestDurationNumericSeconds(t *testing.T) {
	path := writeConfig(t, "completion:\n  timeout: 5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Completion.Timeout.Duration() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Completion.Timeout.Duration())
	}
}

func TestAddrDefaultsPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Address = ""
	cfg.Server.Port = 0
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	cfg.Server.Address = "0.0.0.0:9999"
	if cfg.Addr() != "0.0.0.0:9999" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
}
