package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitError  = 1 // configuration or usage error
	ExitFailed = 2 // at least one file failed validation
)

// exitError carries a process exit code. Silent errors have already been
// reported on the command output.
type exitError struct {
	code   int
	msg    string
	silent bool
}

func (e *exitError) Error() string { return e.msg }

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

func newRootCmd() *cobra.Command {
	log := logrus.New()
	var logLevel string

	cmd := &cobra.Command{
		Use:   "dataval",
		Short: "Validate XML, JSON and CSV files against their schemas",
		Long: "dataval validates structured data files against XSD (plus Schematron), JSON Schema " +
			"and YAML column rules, and explains every issue with an actionable suggestion.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(log))
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newWatchCmd(log))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(log))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI and prints non-silent errors to stderr.
func Execute() error {
	err := newRootCmd().Execute()
	var ee *exitError
	if err != nil && !(errors.As(err, &ee) && ee.silent) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
