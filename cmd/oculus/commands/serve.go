package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oculus/oculus/internal/daemon"
	"github.com/oculus/oculus/internal/store"
	"github.com/oculus/oculus/internal/tracker"
	"github.com/oculus/oculus/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local HTTP server that records focus changes",
		Long: `serve runs in the foreground and accepts focus changes over HTTP:

  POST /api/focus    {"window_id": 42}   (-1 for no window)
  GET  /api/current  the open session, or null
  GET  /health

Focus changes go through the same lock and document as the CLI.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default OCULUS_WEB_PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *options, port int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defaultLogLevel(cfg, opts, "info")

	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer log.Close()

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return err
	}
	if running {
		return errors.Errorf("oculus server is already running (PID: %d)", pid)
	}

	dir, err := newDirectory(cfg)
	if err != nil {
		return err
	}

	if err := dm.WritePID(); err != nil {
		return err
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	archive, closeArchive := openArchive(cfg, log)
	defer closeArchive()

	st := store.NewFromConfig(cfg, log.Logger)
	svc := tracker.NewService(cfg, st, dir, archive, log.Logger)
	server := web.NewServer(cfg, svc, st, dir.Backend(), log.Logger, port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "oculus serving on http://%s (backend %s)\n", server.GetAddress(), dir.Backend())

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "web server failed")
		}
		return nil
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shut down web server")
	}
	return <-errCh
}
