package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/internal/console"
	"github.com/mesh-intelligence/hbnb/internal/logging"
	"github.com/mesh-intelligence/hbnb/internal/storage"
)

// session is an opened store plus the logger and interpreter bound to it.
type session struct {
	logger *zap.Logger
	store  *storage.Store
	interp *console.Interpreter
}

// openSession loads the configuration, builds the logger, opens the store,
// and creates an interpreter writing to the command's output. The caller
// must Close the session.
func openSession(cmd *cobra.Command, flags *rootFlags, opts ...console.Option) (*session, error) {
	cfg, _, err := resolveConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	opts = append([]console.Option{
		console.WithOutput(cmd.OutOrStdout()),
		console.WithLogger(logger),
	}, opts...)

	return &session{
		logger: logger,
		store:  store,
		interp: console.New(store, opts...),
	}, nil
}

// Close releases the store and flushes the logger.
func (s *session) Close() error {
	err := s.store.Close()
	s.logger.Sync()
	return err
}

// runConsole runs the interactive console over the command's input. The
// prompt is shown only when stdin is a terminal.
func runConsole(cmd *cobra.Command, flags *rootFlags) error {
	var opts []console.Option
	if interactive(cmd.InOrStdin()) {
		opts = append(opts, console.WithPrompt(console.DefaultPrompt))
	}

	s, err := openSession(cmd, flags, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.interp.Run(cmd.InOrStdin()); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

// interactive reports whether r is a terminal.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
