// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-19

// Package config handles loading gitssues configuration and secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	// Jira configures the destination tracker.
	Jira JiraConfig `yaml:"jira"`

	// GitHub configures the source platform and its webhooks.
	GitHub GitHubConfig `yaml:"github"`

	// OpsGenie configures the on-call schedule service.
	OpsGenie OpsGenieConfig `yaml:"opsgenie"`

	// Session configures where the prepared session is cached.
	Session SessionConfig `yaml:"session"`

	// Server configures the webhook listener.
	Server ServerConfig `yaml:"server"`

	// Assignment selects how webhook-created tickets are assigned.
	Assignment AssignmentConfig `yaml:"assignment"`
}

// JiraConfig holds Jira connection and project settings.
type JiraConfig struct {
	// BaseURL is the REST root, e.g. "https://acme.atlassian.net/rest".
	BaseURL string `yaml:"base_url"`

	// AgileAPIVersion is used for board, sprint and sprint-issue endpoints.
	AgileAPIVersion string `yaml:"agile_api_version"`

	// PlatformAPIVersion is used for issue, comment and user endpoints.
	PlatformAPIVersion string `yaml:"platform_api_version"`

	Username string        `yaml:"username"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`

	ProjectKey       string   `yaml:"project_key"`
	DefaultIssueType string   `yaml:"default_issue_type"`
	Labels           []string `yaml:"labels,omitempty"`
}

// GitHubConfig holds GitHub API and webhook settings.
type GitHubConfig struct {
	// BaseURL is only needed for GitHub Enterprise.
	BaseURL string `yaml:"base_url,omitempty"`
	Token   string `yaml:"token"`

	WebhookSecret      string `yaml:"webhook_secret"`
	SignatureAlgorithm string `yaml:"signature_algorithm"`
}

// OpsGenieConfig holds on-call schedule settings.
type OpsGenieConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	Schedule string        `yaml:"schedule"`
	Timeout  time.Duration `yaml:"timeout"`

	// ParticipantField is the on-call participant attribute used for matching.
	ParticipantField string `yaml:"participant_field"`

	// UserField is the Jira user attribute the participant field is compared with.
	UserField string `yaml:"user_field"`
}

// SessionConfig holds session cache settings.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds webhook listener settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// AssignmentConfig selects the assignment policy for webhook-created tickets.
type AssignmentConfig struct {
	// Mode is one of "random", "on-call" or "email".
	Mode string `yaml:"mode"`

	// Email is the fixed assignee when Mode is "email".
	Email string `yaml:"email,omitempty"`
}

// Assignment modes.
const (
	AssignRandom = "random"
	AssignOnCall = "on-call"
	AssignEmail  = "email"
)

// LoadEnv loads a .env file from the working directory, if one exists.
// Variables already present in the environment are not overridden. An
// unreadable or malformed file is reported and skipped.
func LoadEnv() {
	if err := loadEnvFile(".env"); err != nil {
		slog.Warn("ignoring .env file", "error", err)
	}
}

// loadEnvFile loads path into the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// Default returns a config built only from defaults and environment variables.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// parseRaw expands environment variables and decodes YAML content.
func parseRaw(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		"gitssues.yml",
		"gitssues.yaml",
		".github/gitssues.yml",
		".github/gitssues.yaml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyEnv fills secrets that are unset in the file from the environment.
func (c *Config) applyEnv() {
	setFromEnv(&c.Jira.Username, "JIRA_USERNAME", "USERNAME")
	setFromEnv(&c.Jira.Token, "JIRA_TOKEN")
	setFromEnv(&c.GitHub.Token, "GITHUB_TOKEN")
	setFromEnv(&c.GitHub.WebhookSecret, "GITHUB_SECRET")
	setFromEnv(&c.OpsGenie.Token, "OPSGENIE_TOKEN")
	setFromEnv(&c.OpsGenie.Schedule, "OPSGENIE_SCHEDULE_NAME", "SCHEDULE_NAME")
	setFromEnv(&c.Server.Port, "PORT")
}

// setFromEnv assigns the first non-empty variable when dst is empty.
func setFromEnv(dst *string, keys ...string) {
	if *dst != "" {
		return
	}
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			*dst = val
			return
		}
	}
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	c.Jira.BaseURL = strings.TrimRight(c.Jira.BaseURL, "/")
	if c.Jira.AgileAPIVersion == "" {
		c.Jira.AgileAPIVersion = "1.0"
	}
	if c.Jira.PlatformAPIVersion == "" {
		c.Jira.PlatformAPIVersion = "3"
	}
	if c.Jira.Timeout == 0 {
		c.Jira.Timeout = 30 * time.Second
	}
	if c.Jira.DefaultIssueType == "" {
		c.Jira.DefaultIssueType = "Bug"
	}
	if c.GitHub.SignatureAlgorithm == "" {
		c.GitHub.SignatureAlgorithm = "sha1"
	}
	if c.OpsGenie.BaseURL == "" {
		c.OpsGenie.BaseURL = "https://api.opsgenie.com"
	}
	if c.OpsGenie.Timeout == 0 {
		c.OpsGenie.Timeout = 30 * time.Second
	}
	if c.OpsGenie.ParticipantField == "" {
		c.OpsGenie.ParticipantField = "name"
	}
	if c.OpsGenie.UserField == "" {
		c.OpsGenie.UserField = "emailAddress"
	}
	if c.Session.Path == "" {
		c.Session.Path = "gitssues.cache"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Assignment.Mode == "" {
		c.Assignment.Mode = AssignRandom
	}
}

// ValidateJira reports missing settings required to talk to Jira.
func (c *Config) ValidateJira() error {
	var missing []string
	if c.Jira.BaseURL == "" {
		missing = append(missing, "jira.base_url")
	}
	if c.Jira.Username == "" {
		missing = append(missing, "jira.username (or JIRA_USERNAME)")
	}
	if c.Jira.Token == "" {
		missing = append(missing, "jira.token (or JIRA_TOKEN)")
	}
	if c.Jira.ProjectKey == "" {
		missing = append(missing, "jira.project_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateAssignment checks that the configured assignment mode is usable.
func (c *Config) ValidateAssignment() error {
	switch c.Assignment.Mode {
	case AssignRandom:
		return nil
	case AssignOnCall:
		if c.OpsGenie.Token == "" || c.OpsGenie.Schedule == "" {
			return fmt.Errorf("on-call assignment requires opsgenie.token and opsgenie.schedule")
		}
		return nil
	case AssignEmail:
		if c.Assignment.Email == "" {
			return fmt.Errorf("email assignment requires assignment.email")
		}
		return nil
	default:
		return fmt.Errorf("unknown assignment mode: %s", c.Assignment.Mode)
	}
}
