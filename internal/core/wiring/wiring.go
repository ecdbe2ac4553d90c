// Package wiring builds clients and policies from configuration.
package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/similigh/gitssues/internal/assign"
	"github.com/similigh/gitssues/internal/core/config"
	"github.com/similigh/gitssues/internal/integrations/github"
	"github.com/similigh/gitssues/internal/integrations/jira"
	"github.com/similigh/gitssues/internal/integrations/opsgenie"
)

// Jira creates the Jira client.
func Jira(cfg *config.Config, logger *slog.Logger) (*jira.Client, error) {
	if err := cfg.ValidateJira(); err != nil {
		return nil, err
	}
	return jira.NewClient(jira.Config{
		BaseURL:         cfg.Jira.BaseURL,
		AgileVersion:    cfg.Jira.AgileAPIVersion,
		PlatformVersion: cfg.Jira.PlatformAPIVersion,
		Username:        cfg.Jira.Username,
		Token:           cfg.Jira.Token,
		Timeout:         cfg.Jira.Timeout,
		Logger:          logger,
	})
}

// OnCall creates the on-call schedule client.
func OnCall(cfg *config.Config, logger *slog.Logger) (*opsgenie.Client, error) {
	return opsgenie.NewClient(opsgenie.Config{
		BaseURL:  cfg.OpsGenie.BaseURL,
		Token:    cfg.OpsGenie.Token,
		Schedule: cfg.OpsGenie.Schedule,
		Timeout:  cfg.OpsGenie.Timeout,
		Logger:   logger,
	})
}

// GitHub creates the source platform client.
func GitHub(ctx context.Context, cfg *config.Config) (*github.Client, error) {
	if cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("missing configuration: github.token (or GITHUB_TOKEN)")
	}
	return github.NewClient(ctx, cfg.GitHub.Token, cfg.GitHub.BaseURL)
}

// Policy builds the assignment policy for mode. For config.AssignEmail the
// email argument wins over the configured one.
func Policy(cfg *config.Config, mode, email string, dir assign.Directory, logger *slog.Logger) (assign.Policy, error) {
	switch mode {
	case "", config.AssignRandom:
		return assign.NewRandom(dir, nil), nil
	case config.AssignOnCall:
		source, err := OnCall(cfg, logger)
		if err != nil {
			return nil, err
		}
		return assign.NewOnCall(dir, source, cfg.OpsGenie.ParticipantField, cfg.OpsGenie.UserField), nil
	case config.AssignEmail:
		if email == "" {
			email = cfg.Assignment.Email
		}
		if email == "" {
			return nil, fmt.Errorf("email assignment requires an email address")
		}
		return assign.NewFixedEmail(dir, email), nil
	default:
		return nil, fmt.Errorf("unknown assignment mode: %s", mode)
	}
}
