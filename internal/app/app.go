package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatd/pkg/chat"
	"chatd/pkg/completion"
	"chatd/pkg/config"
	"chatd/pkg/store"
	"chatd/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg       *config.Config
	sources   string
	version   string
	commit    string
	buildDate string

	orc *chat.Orchestrator
	srv *http.Server
}

// New initializes resources that do not require a running context: config
// validation, runtime key sets, validation rules and the store. It does
// not start the HTTP server; call Run to start it and block until
// shutdown.
func New(cfg *config.Config, sources, version, commit, buildDate string) (*App, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	runtimeCfg := &config.RuntimeConfig{BackendKeys: map[string]struct{}{}, SigningKeys: map[string]struct{}{}}
	for _, k := range cfg.Security.APIKeys.Backend {
		runtimeCfg.BackendKeys[k] = struct{}{}
		runtimeCfg.SigningKeys[k] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	validation.SetRules(validation.Rules{MaxMessageBytes: cfg.Limits.MaxMessageBytes.Int64()})

	if err := store.Open(cfg.Server.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Server.DBPath, err)
	}

	orc := chat.NewOrchestrator(completion.NewOpenAI(cfg.Completion))
	return &App{cfg: cfg, sources: sources, version: version, commit: commit, buildDate: buildDate, orc: orc}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or a fatal
// server error occurs. Teardown happens exactly once, in here.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		_ = store.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// shutdown is the single teardown hook: stop accepting requests, then
// close the store.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.srv != nil {
		_ = a.srv.Shutdown(ctx)
	}
	return store.Close()
}

func (a *App) completionState() string {
	if strings.TrimSpace(a.cfg.Completion.APIKey) == "" {
		return "unconfigured"
	}
	return a.cfg.Completion.Model
}
