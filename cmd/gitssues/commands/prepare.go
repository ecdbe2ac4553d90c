package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/core/wiring"
)

var prepareForce bool

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Discover the Jira board, project and issue type",
	Long: `Resolve the board, project and default issue type for the configured
project key and cache them in the session file. Every jira command and the
webhook server need a prepared session.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPrepare(cmd.Context())
	},
}

var cleanCacheCmd = &cobra.Command{
	Use:   "clean-cache",
	Short: "Remove the prepared session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := session.NewStore(cfg.Session.Path)
		if err := store.Clear(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Cache cleaned")
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(cleanCacheCmd)

	prepareCmd.Flags().BoolVar(&prepareForce, "force", false, "Discover again even if a session exists")
}

func runPrepare(ctx context.Context) {
	cfg := loadConfig()
	store := session.NewStore(cfg.Session.Path)

	if store.Exists() && !prepareForce {
		fmt.Printf("Session already prepared in %s (use --force to refresh)\n", store.Path())
		return
	}

	api, err := wiring.Jira(cfg, slog.Default())
	if err != nil {
		fail("%v", err)
	}

	sess, err := engine.New(api).Prepare(ctx, cfg.Jira.ProjectKey, cfg.Jira.DefaultIssueType)
	if err != nil {
		fail("Prepare failed: %v", err)
	}
	if err := store.Save(sess); err != nil {
		fail("%v", err)
	}

	fmt.Printf("Board:      %s (%s)\n", sess.Board.Name, sess.Board.ID)
	fmt.Printf("Project:    %s %s (%s)\n", sess.Project.Key, sess.Project.Name, sess.Project.ID)
	fmt.Printf("Issue type: %s (%s)\n", sess.IssueType.Name, sess.IssueType.ID)
	fmt.Printf("Session saved to %s\n", store.Path())
}
