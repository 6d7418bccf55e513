package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/review/internal/logging"
)

// errInterrupted is returned by command RunE funcs on context cancellation
// from SIGINT, so Execute can map it to exit code 130.
var errInterrupted = errors.New("review: interrupted")

var (
	verbose bool
	logger  = mustNopLogger()
)

var rootCmd = &cobra.Command{
	Use:   "review",
	Short: "LLM-driven multi-round code review automation",
	Long: `review drives an iterative propose -> apply -> test -> fix loop:
a model proposes complete-file edits against a natural-language review
brief, the edits are validated and committed as scoped git commits, and
a user-supplied build/test command verifies each round.

Commands:
  iterate   Run the full plan + 3-iteration + error-fix loop
  api       Run a single review turn without committing a full loop
  validate  Validate a patch payload against the wire schema
  schema    Print the patch JSON schema
  scan      Classify and list a repository's reviewable files
  version   Show version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errExitCode1) {
			fmt.Fprintln(os.Stderr, "review:", err)
		}
		if errors.Is(err, errInterrupted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// mustNopLogger gives logger a usable zero value before PersistentPreRunE
// has run, e.g. for commands invoked directly in tests.
func mustNopLogger() *zap.SugaredLogger {
	l, _ := logging.New(false)
	return l
}
