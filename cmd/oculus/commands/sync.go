package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oculus/oculus/internal/database"
	"github.com/oculus/oculus/internal/store"
)

func newSyncCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy every closed session into the SQLite archive",
		Long: `sync inserts the closed sessions of the session document into the
archive database (OCULUS_ARCHIVE_PATH, default ~/.config/oculus/oculus.db).
Sessions already archived are skipped.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}
}

func runSync(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer log.Close()

	data, err := store.NewFromConfig(cfg, log.Logger).Load(cmd.Context())
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := database.NewRepository(db)
	added, err := repo.RecordSessions(data.Sessions)
	if err != nil {
		return err
	}

	total, err := repo.CountSessions()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Archived %d new sessions (%d total)\n", added, total)
	return nil
}
