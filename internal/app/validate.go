package app

import (
	"errors"
	"strings"

	"chatd/pkg/config"
	"chatd/pkg/logger"
)

// validateConfig fails fast on configuration the server cannot run with.
func validateConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if strings.TrimSpace(cfg.Server.DBPath) == "" {
		return errors.New("storage db_path is required")
	}
	if len(cfg.Security.APIKeys.Backend) == 0 && len(cfg.Security.APIKeys.Frontend) == 0 {
		return errors.New("no API keys configured; set security.api_keys")
	}
	if (cfg.Server.TLS.CertFile == "") != (cfg.Server.TLS.KeyFile == "") {
		return errors.New("tls requires both cert_file and key_file")
	}
	if strings.TrimSpace(cfg.Completion.APIKey) == "" {
		// Not fatal: sends will fail with not_configured until a key is set.
		logger.Warn("completion_api_key_missing")
	}
	return nil
}
