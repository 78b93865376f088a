// Package cli defines the lane command surface. Commands route to the
// managers wired in by internal.NewApp and report through stdout/stderr
// and exit codes; an external host process drives them as subcommands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "lane",
	Short: "lane - work item lifecycle automation engine",
	Long: `lane automates the lifecycle of work items and their grouping into
larger initiatives: allocating identifiers from a shared registry, moving
item documents through status directories as they transition, rewriting
their front-matter, and tagging the revision history on completion.

Exit codes: 0 success, 1 precondition/validation failure, 2 unexpected
I/O or VCS failure, 3 partial success (tag created locally, push failed).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lane %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
