// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-15
// Last Modified: 2026-10-19

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/similigh/gitssues/internal/core/config"
	"github.com/similigh/gitssues/internal/core/engine"
	"github.com/similigh/gitssues/internal/core/session"
	"github.com/similigh/gitssues/internal/core/wiring"
	"github.com/similigh/gitssues/internal/integrations/jira"
)

var (
	newOnCall bool
	newAssign string
	newPlain  bool
)

var jiraCmd = &cobra.Command{
	Use:   "jira",
	Short: "Manage Jira tickets",
	Long:  `Create, comment, transition, assign and delete Jira tickets. Requires a prepared session.`,
}

var jiraNewCmd = &cobra.Command{
	Use:   "new TITLE CONTENT",
	Short: "Create a ticket in the active sprint and assign it",
	Long: `Create a ticket, move it to the active sprint and assign it.
The assignee is random among assignable users unless --on-call or --assign is given.`,
	Args: cobra.ExactArgs(2),
	Run:  runJiraNew,
}

var jiraCommentCmd = &cobra.Command{
	Use:   "comment KEY TEXT",
	Short: "Comment on a ticket",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, _ := jiraEngine(slog.Default())
		comment, err := eng.Comment(cmd.Context(), args[0], args[1])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Comment %s added to %s\n", comment.ID, args[0])
	},
}

var jiraTransitionsCmd = &cobra.Command{
	Use:   "transitions KEY",
	Short: "List the transitions available on a ticket",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, _ := jiraEngine(slog.Default())
		transitions, err := eng.Transitions(cmd.Context(), args[0])
		if err != nil {
			fail("%v", err)
		}
		printTransitions(transitions)
	},
}

var jiraTransitionCmd = &cobra.Command{
	Use:   "transition KEY NAME",
	Short: "Move a ticket through a named transition",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, _ := jiraEngine(slog.Default())
		t, err := eng.Transition(cmd.Context(), args[0], args[1])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s moved through %q\n", args[0], t.Name)
	},
}

var jiraDeleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Delete a ticket",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, _ := jiraEngine(slog.Default())
		if err := eng.Delete(cmd.Context(), args[0]); err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s deleted\n", args[0])
	},
}

var jiraAssignCmd = &cobra.Command{
	Use:   "assign KEY EMAIL",
	Short: "Assign a ticket to the user with an email address",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, _ := jiraEngine(slog.Default())
		accountID, err := eng.AssignByEmail(cmd.Context(), args[0], args[1])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s assigned to %s (%s)\n", args[0], args[1], accountID)
	},
}

var jiraShowCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Show a ticket",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, _ := jiraEngine(slog.Default())
		issue, err := eng.Show(cmd.Context(), args[0])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s  %s\nStatus: %s\n%s\n", issue.Key, issue.Summary, issue.Status, issue.Self)
	},
}

func init() {
	rootCmd.AddCommand(jiraCmd)
	jiraCmd.AddCommand(jiraNewCmd, jiraCommentCmd, jiraTransitionsCmd, jiraTransitionCmd,
		jiraDeleteCmd, jiraAssignCmd, jiraShowCmd)

	jiraNewCmd.Flags().BoolVar(&newOnCall, "on-call", false, "Assign to whoever is on call")
	jiraNewCmd.Flags().StringVar(&newAssign, "assign", "", "Assign to the user with this email")
	jiraNewCmd.Flags().BoolVar(&newPlain, "plain", false, "Print progress as plain lines (CI mode)")
	jiraNewCmd.MarkFlagsMutuallyExclusive("on-call", "assign")
}

// jiraEngine loads config and session, exiting when either is unusable.
func jiraEngine(logger *slog.Logger, opts ...engine.Option) (*engine.Engine, *session.Session, *config.Config) {
	cfg := loadConfig()
	sess := loadSession(session.NewStore(cfg.Session.Path))

	api, err := wiring.Jira(cfg, logger)
	if err != nil {
		fail("%v", err)
	}
	opts = append([]engine.Option{engine.WithLogger(logger)}, opts...)
	return engine.New(api, opts...), sess, cfg
}

func runJiraNew(cmd *cobra.Command, args []string) {
	mode := config.AssignRandom
	switch {
	case newOnCall:
		mode = config.AssignOnCall
	case newAssign != "":
		mode = config.AssignEmail
	}

	runner := newTicketRunner(plainMode())
	eng, sess, cfg := jiraEngine(runner.logger(), engine.WithStepWrapper(runner.wrap))

	policy, err := wiring.Policy(cfg, mode, newAssign, eng.Jira(), runner.logger())
	if err != nil {
		fail("%v", err)
	}

	outcome, err := runner.run(cmd.Context(), eng, sess, args[0], args[1], cfg.Jira.Labels, policy)
	printOutcome(outcome, err)
	if err != nil {
		os.Exit(1)
	}
}

func printTransitions(transitions []jira.Transition) {
	if len(transitions) == 0 {
		fmt.Println("No transitions available")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, t := range transitions {
		fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
	}
	_ = w.Flush()
}

func printOutcome(outcome *engine.Outcome, err error) {
	if err == nil {
		fmt.Printf("Ticket %s created in %s and assigned to %s\n",
			outcome.IssueKey(), outcome.Sprint.Name, outcome.AssigneeAccountID)
		return
	}

	fmt.Fprintf(os.Stderr, "Ticket creation failed: %v\n", err)
	if outcome != nil && outcome.IssueKey() != "" {
		fmt.Fprintf(os.Stderr, "Ticket %s was created but step %s did not complete (run %s)\n",
			outcome.IssueKey(), outcome.FailedStep, outcome.RunID)
	}
}

// plainMode is true with --plain, under CI, or when stdout is not a terminal.
func plainMode() bool {
	return newPlain || os.Getenv("CI") != "" || !isatty.IsTerminal(os.Stdout.Fd())
}
