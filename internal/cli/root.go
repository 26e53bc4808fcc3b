// Package cli implements the gridfields command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gridfields/pkg/gridfields"
	"github.com/mesh-intelligence/gridfields/pkg/types"
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
	jsonMode  bool
	logLevel  string
}

// userErrors are reported with exitUserError; anything else is a system
// error.
var userErrors = []error{
	types.ErrFieldNotFound,
	types.ErrFieldFrozen,
	types.ErrUnsupportedFieldType,
	types.ErrMalformedTypeOption,
	types.ErrDuplicateOptionID,
	types.ErrInvalidOptionName,
	types.ErrInvalidName,
	types.ErrInvalidWidth,
	types.ErrGridMismatch,
	types.ErrInvalidPosition,
	types.ErrInvalidGridID,
	errUsage,
}

// errUsage marks invalid arguments and flags.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// NewRootCmd creates the top-level "gridfields" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:     "gridfields",
		Short:   "Manage the field schema of grids",
		Long:    "gridfields creates, edits, retypes, and removes the fields (columns) of grids.\nSwitching a field's type keeps its earlier configuration so switching back restores it.",
		Version: gridfields.Version,
		// Errors are printed by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err)
	})

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir or $GRIDFIELDS_CONFIG_DIR)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.gridfields-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newGridsCmd(flags))
	root.AddCommand(newFieldCmd(flags))

	return root
}

// Execute runs the root command against os.Args and returns the exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
