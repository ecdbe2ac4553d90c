// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-10
// Last Modified: 2026-10-19

// Package main runs the webhook server that relays new GitHub issues to Jira.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/similigh/gitssues/internal/core/config"
	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/core/wiring"
	"github.com/similigh/gitssues/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	config.LoadEnv()

	cfg := config.Default()
	if path := config.FindConfigPath(os.Getenv("GITSSUES_CONFIG")); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ValidateAssignment(); err != nil {
		return err
	}

	verifier, err := webhook.NewVerifier(cfg.GitHub.WebhookSecret, cfg.GitHub.SignatureAlgorithm)
	if err != nil {
		return fmt.Errorf("failed to configure webhook verification: %w", err)
	}

	api, err := wiring.Jira(cfg, logger)
	if err != nil {
		return err
	}
	policy, err := wiring.Policy(cfg, cfg.Assignment.Mode, "", api, logger)
	if err != nil {
		return err
	}

	relay := engine.NewRelay(
		engine.New(api, engine.WithLogger(logger)),
		session.NewStore(cfg.Session.Path),
		policy,
		cfg.Jira.Labels,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           webhook.NewMux(webhook.NewHandler(verifier, relay, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webhook server listening",
			"addr", server.Addr,
			"algorithm", verifier.Algorithm(),
			"assignment", policy.Name(),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
