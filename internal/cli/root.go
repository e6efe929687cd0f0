// Package cli implements the stockroom command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/stockroom"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
}

// codeError carries the process exit code for a failed command.
type codeError struct {
	code int
	err  error
}

func (e *codeError) Error() string { return e.err.Error() }
func (e *codeError) Unwrap() error { return e.err }

// exitError tags err with an exit code. Execute prints the message to stderr
// and returns the code.
func exitError(code int, format string, args ...any) error {
	return &codeError{code: code, err: fmt.Errorf(format, args...)}
}

// NewRootCmd creates the top-level "stockroom" command with global flags
// and all subcommands registered. Running it without a subcommand imports
// the configured file and opens the interactive menu.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:     "stockroom",
		Short:   "An interactive inventory manager",
		Long:    "Stockroom merges an inventory CSV into a local store and opens a menu\nfor viewing, adding and backing up products.",
		Version: stockroom.Version,
		Args:    cobra.NoArgs,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.stockroom)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.stockroom-db)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	return exitCode(root, root.ExecuteContext(ctx))
}

// exitCode reports err on the command's stderr and maps it to an exit code.
// Errors without a code are usage errors.
func exitCode(cmd *cobra.Command, err error) int {
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err)

	var ce *codeError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}
