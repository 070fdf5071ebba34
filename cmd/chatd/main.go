package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"chatd/internal/app"
	"chatd/pkg/config"
	"chatd/pkg/logger"
)

// set via -ldflags at build time
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load(".env")

	addrFlag, dbFlag, cfgFlag, set := config.ParseCommandFlags()
	cfgPath := config.ResolveConfigPath(cfgFlag, set["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Explicit flags win over env and file values.
	if set["addr"] {
		cfg.Server.Address = addrFlag
		cfg.Server.Port = 0
	}
	if set["db"] {
		cfg.Server.DBPath = dbFlag
	}

	logger.Init(cfg.Logging.Level)

	sources := describeSources(cfgPath, envUsed, set)

	a, err := app.New(cfg, sources, version, commit, buildDate)
	if err != nil {
		logger.Error("startup_failed", "error", err.Error())
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("server_exit", "error", err.Error())
		os.Exit(1)
	}
}

func describeSources(cfgPath string, envUsed bool, set map[string]bool) string {
	var parts []string
	if cfgPath != "" {
		parts = append(parts, "file:"+cfgPath)
	}
	if envUsed {
		parts = append(parts, "env")
	}
	if len(set) > 0 {
		parts = append(parts, "flags")
	}
	if len(parts) == 0 {
		return "defaults"
	}
	return strings.Join(parts, ",")
}
