package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/oculus/oculus/internal/daemon"
	"github.com/oculus/oculus/internal/database"
	"github.com/oculus/oculus/internal/store"
	"github.com/oculus/oculus/pkg/utils"
)

func newStatusCommand(opts *options) *cobra.Command {
	var showConfig bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server state and the open session",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts, showConfig)
		},
	}

	cmd.Flags().BoolVar(&showConfig, "config", false, "Also print the effective configuration")

	return cmd
}

func runStatus(cmd *cobra.Command, opts *options, showConfig bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer log.Close()

	out := cmd.OutOrStdout()
	if showConfig {
		fmt.Fprintln(out, cfg.String())
		fmt.Fprintln(out)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	switch {
	case err != nil:
		fmt.Fprintf(out, "Server:    unknown (%v)\n", err)
	case running:
		fmt.Fprintf(out, "Server:    running (PID: %d, %s)\n", pid, dm.PIDFile())
	default:
		fmt.Fprintf(out, "Server:    not running (PID file %s)\n", dm.PIDFile())
	}

	if dir, err := newDirectory(cfg); err != nil {
		fmt.Fprintf(out, "Backend:   unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Backend:   %s\n", dir.Backend())
	}

	st := store.NewFromConfig(cfg, log.Logger)
	fmt.Fprintf(out, "Data file: %s\n", st.DataPath())

	if cfg.Archive.Enabled {
		printArchive(out, cfg.Archive.Path, time.Now())
	}

	data, err := st.Load(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Sessions:  %d closed\n", len(data.Sessions))

	current := data.CurrentSession
	if current == nil {
		fmt.Fprintln(out, "Current:   none")
		return nil
	}

	fmt.Fprintf(out, "Current:   %s - %s (window %d, open for %s)\n",
		current.App, current.Title, current.WindowID, utils.FormatSince(current.StartTime, time.Now()))
	return nil
}

// recentErrorLimit is how many archived errors status shows
const recentErrorLimit = 3

// printArchive summarizes the archive. Archive problems are shown, never
// returned, as the archive is optional.
func printArchive(out io.Writer, path string, now time.Time) {
	db, err := database.Open(path)
	if err != nil {
		fmt.Fprintf(out, "Archive:   unavailable (%v)\n", err)
		return
	}
	defer db.Close()

	repo := database.NewRepository(db)

	total, err := repo.CountSessions()
	if err != nil {
		fmt.Fprintf(out, "Archive:   unavailable (%v)\n", err)
		return
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := repo.GetSessionsSince(midnight)
	if err != nil {
		fmt.Fprintf(out, "Archive:   unavailable (%v)\n", err)
		return
	}

	var todaySeconds float64
	for _, r := range today {
		todaySeconds += r.Duration
	}
	fmt.Fprintf(out, "Archive:   %d sessions, %d today (%s)\n",
		total, len(today), utils.FormatRoundedUnit(int64(todaySeconds)))

	errorLogs, err := repo.GetErrors(recentErrorLimit)
	if err != nil || len(errorLogs) == 0 {
		return
	}

	fmt.Fprintln(out, "Recent errors:")
	for _, e := range errorLogs {
		fmt.Fprintf(out, "  %s  %-21s window %d: %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Kind, e.WindowID, e.ErrorMsg)
	}
}
