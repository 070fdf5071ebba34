package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	runtimeMu  sync.RWMutex
	runtimeCfg *RuntimeConfig
)

// SetRuntime installs the global runtime key sets.
func SetRuntime(rc *RuntimeConfig) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeCfg = rc
}

// GetSigningKeys returns the configured identity-signing secrets.
func GetSigningKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtimeCfg == nil {
		return nil
	}
	return runtimeCfg.SigningKeys
}

// GetBackendKeys returns the configured backend API keys.
func GetBackendKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtimeCfg == nil {
		return nil
	}
	return runtimeCfg.BackendKeys
}

// Default returns the built-in configuration defaults. The completion
// defaults mirror the provider settings the service was tuned for.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Address = ""
	cfg.Server.Port = 8080
	cfg.Server.DBPath = "./data"
	cfg.Completion.Model = "gpt-4o-mini"
	cfg.Completion.Timeout = Duration(30 * time.Second)
	cfg.Completion.MaxTokens = 1000
	cfg.Completion.Temperature = 0.7
	cfg.Logging.Level = "info"
	cfg.Limits.MaxMessageBytes = SizeBytes(64 * 1024)
	return cfg
}

// Load reads the YAML config file at path. A missing path yields the
// defaults; a present but unreadable or invalid file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEffective loads the config file and applies environment overrides on
// top. It reports whether any environment override was used.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	envUsed := applyEnv(cfg)
	return cfg, envUsed, nil
}

// applyEnv overlays environment variables onto cfg. Env wins over file
// values; explicit flags are handled by the caller and win over both.
func applyEnv(cfg *Config) bool {
	used := false
	if v := os.Getenv("CHATD_ADDR"); v != "" {
		cfg.Server.Address = v
		cfg.Server.Port = 0
		used = true
	}
	if v := os.Getenv("CHATD_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
		used = true
	}
	if v := os.Getenv("CHATD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
		used = true
	}
	if v := os.Getenv("CHATD_BACKEND_KEYS"); v != "" {
		cfg.Security.APIKeys.Backend = splitKeys(v)
		used = true
	}
	if v := os.Getenv("CHATD_FRONTEND_KEYS"); v != "" {
		cfg.Security.APIKeys.Frontend = splitKeys(v)
		used = true
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Completion.APIKey = v
		used = true
	}
	if v := os.Getenv("CHATD_COMPLETION_MODEL"); v != "" {
		cfg.Completion.Model = v
		used = true
	}
	if v := os.Getenv("CHATD_COMPLETION_BASE_URL"); v != "" {
		cfg.Completion.BaseURL = v
		used = true
	}
	if v := os.Getenv("CHATD_COMPLETION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Completion.Timeout = Duration(d)
			used = true
		}
	}
	return used
}

func splitKeys(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
