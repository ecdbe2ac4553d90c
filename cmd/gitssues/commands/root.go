// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/gitssues/internal/core/config"
	"github.com/similigh/gitssues/internal/core/session"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gitssues",
	Short: "Relay GitHub issues to Jira",
	Long: `gitssues turns GitHub issues into Jira tickets placed in the active sprint
and assigned to a teammate, and manages those tickets from the command line.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: gitssues.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig loads the config file, falling back to defaults and
// environment variables when none is found.
func loadConfig() *config.Config {
	path := config.FindConfigPath(cfgFile)
	if path == "" {
		if cfgFile != "" {
			fail("Config file not found: %s", cfgFile)
		}
		if verbose {
			fmt.Println("No configuration file found. Using defaults and environment variables.")
		}
		return config.Default()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fail("Failed to load config from %s: %v", path, err)
	}
	if verbose {
		fmt.Printf("Loaded config from %s\n", path)
	}
	return cfg
}

// loadSession exits with guidance when prepare has not been run.
func loadSession(store *session.Store) *session.Session {
	sess, err := store.Load()
	if errors.Is(err, session.ErrNotPrepared) {
		fail("Run prepare before!")
	}
	if errors.Is(err, session.ErrIncompatible) {
		fail("Session file %s is not usable (%v). Run clean-cache, then prepare.", store.Path(), err)
	}
	if err != nil {
		fail("Failed to load session: %v", err)
	}
	return sess
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
