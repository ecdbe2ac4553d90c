package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/similigh/gitssues/internal/core/wiring"
	"github.com/similigh/gitssues/internal/integrations/github"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Manage GitHub issues",
}

var githubIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "List, open, comment, close and reopen issues",
}

var githubListCmd = &cobra.Command{
	Use:   "list OWNER/REPO",
	Short: "List open issues",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issues, err := githubClient(cmd).ListIssues(cmd.Context(), args[0])
		if err != nil {
			fail("%v", err)
		}
		if len(issues) == 0 {
			fmt.Println("No open issues")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, issue := range issues {
			fmt.Fprintf(w, "#%d\t%s\t%s\n", issue.GetNumber(), issue.GetTitle(), issue.GetUser().GetLogin())
		}
		_ = w.Flush()
	},
}

var githubNewCmd = &cobra.Command{
	Use:   "new OWNER/REPO TITLE BODY",
	Short: "Open an issue",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		issue, err := githubClient(cmd).CreateIssue(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Issue #%d created: %s\n", issue.GetNumber(), issue.GetHTMLURL())
	},
}

var githubCommentCmd = &cobra.Command{
	Use:   "comment OWNER/REPO NUMBER TEXT",
	Short: "Comment on an issue",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		comment, err := githubClient(cmd).CreateComment(cmd.Context(), args[0], issueNumber(args[1]), args[2])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Comment added: %s\n", comment.GetHTMLURL())
	},
}

var githubCloseCmd = &cobra.Command{
	Use:   "close OWNER/REPO NUMBER",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setIssueState(cmd, args, github.StateClosed)
	},
}

var githubReopenCmd = &cobra.Command{
	Use:   "reopen OWNER/REPO NUMBER",
	Short: "Reopen an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setIssueState(cmd, args, github.StateOpen)
	},
}

func init() {
	rootCmd.AddCommand(githubCmd)
	githubCmd.AddCommand(githubIssueCmd)
	githubIssueCmd.AddCommand(githubListCmd, githubNewCmd, githubCommentCmd, githubCloseCmd, githubReopenCmd)
}

func githubClient(cmd *cobra.Command) *github.Client {
	client, err := wiring.GitHub(cmd.Context(), loadConfig())
	if err != nil {
		fail("%v", err)
	}
	return client
}

func issueNumber(arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		fail("Invalid issue number: %s", arg)
	}
	return n
}

func setIssueState(cmd *cobra.Command, args []string, state string) {
	issue, err := githubClient(cmd).SetIssueState(cmd.Context(), args[0], issueNumber(args[1]), state)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Issue #%d is now %s\n", issue.GetNumber(), issue.GetState())
}
