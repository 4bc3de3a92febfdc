package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oculus/oculus/internal/config"
	"github.com/oculus/oculus/internal/database"
	"github.com/oculus/oculus/internal/logger"
	"github.com/oculus/oculus/internal/store"
	"github.com/oculus/oculus/internal/tracker"
	"github.com/oculus/oculus/pkg/detector"
	"github.com/oculus/oculus/pkg/window"
)

// options holds the persistent flags shared by every command
type options struct {
	dir      string
	backend  string
	logLevel string
	repair   bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "oculus <window-id>",
		Short: "Record which window holds focus",
		Long: `oculus records focus sessions. Invoke it from a window manager hook
with the id of the window that just gained focus, or -1 when no window
has focus. The previous session is closed and a new one opened in
~/.oculus_sessions.json.`,
		Example: `  oculus 42
  oculus -1
  oculus --repair 42`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFocus(cmd, opts, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "Directory holding the session document (default $HOME)")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Window directory backend: auto, yabai, x11, sway, hyprland")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&opts.repair, "repair", false, "Move a corrupt session document aside before recording")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newStopCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newSyncCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the CLI with args and returns the process exit code
func Execute(args []string) int {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(normalizeArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return ExitOK
}

// loadConfig builds the configuration from the environment and flags
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	if opts.dir != "" {
		cfg.Store.Dir = opts.dir
	}
	if opts.backend != "" {
		cfg.Directory.Backend = opts.backend
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// defaultLogLevel sets level unless the user chose one with --log-level or
// OCULUS_LOG_LEVEL
func defaultLogLevel(cfg *config.Config, opts *options, level string) {
	if opts.logLevel != "" {
		return
	}
	if _, ok := os.LookupEnv(config.EnvPrefix + "_LOG_LEVEL"); ok {
		return
	}
	cfg.Log.Level = level
}

func newLogger(cfg *config.Config, out io.Writer) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Pretty: cfg.Log.Pretty,
		Out:    out,
	})
}

// newDirectory selects the window directory. Failing to find any backend is
// reported as the directory being unavailable.
func newDirectory(cfg *config.Config) (window.Directory, error) {
	dir, err := detector.New(cfg.Directory.Backend)
	if err != nil {
		return nil, window.Unavailable(cfg.Directory.Backend, err)
	}
	return dir, nil
}

// openArchive returns the archive repository when enabled. A broken archive
// only disables archiving.
func openArchive(cfg *config.Config, log *logger.Logger) (tracker.Archive, func()) {
	if !cfg.Archive.Enabled {
		return nil, func() {}
	}

	db, err := database.Open(cfg.Archive.Path)
	if err != nil {
		log.Warn().Err(err).Msg("Archive unavailable, continuing without it")
		return nil, func() {}
	}

	return database.NewRepository(db), func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close archive")
		}
	}
}

func runFocus(cmd *cobra.Command, opts *options, arg string) error {
	windowID, err := parseWindowID(arg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer log.Close()

	st := store.NewFromConfig(cfg, log.Logger)

	if opts.repair {
		moved, err := st.Repair(cmd.Context())
		if err != nil {
			return err
		}
		if moved != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Moved corrupt session document to %s\n", moved)
		}
	}

	var dir window.Directory
	if windowID != tracker.NoWindow {
		dir, err = newDirectory(cfg)
		if err != nil {
			return err
		}
	}

	archive, closeArchive := openArchive(cfg, log)
	defer closeArchive()

	svc := tracker.NewService(cfg, st, dir, archive, log.Logger)
	_, err = svc.Focus(cmd.Context(), windowID)
	return err
}
