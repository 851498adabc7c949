// Package cli implements the hbnb command-line interface: the interactive
// console as the root command plus the exec, init, and version subcommands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hbnb/internal/storage"
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
	file      string
	storage   string
}

// NewRootCmd creates the top-level "hbnb" command with global flags and
// all subcommands registered. Running it without a subcommand starts the
// console on stdin.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "hbnb",
		Short: "Record console for the hbnb object store",
		Long: "hbnb reads console commands (create, show, all, count, update, destroy)\n" +
			"from stdin and applies them to a persisted object store.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/hbnb)")
	root.PersistentFlags().StringVar(&flags.file, "file", "", "snapshot file for the file storage (default: ./hbnb.json)")
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "storage backend: file, sqlite, or badger")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newExecCmd(flags))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hbnb:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case storage.IsCorrupt(err), errors.Is(err, os.ErrPermission):
		return exitSysError
	default:
		return exitUserError
	}
}
