package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oculus/oculus/internal/daemon"
)

func newStopCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running oculus server",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			pid, err := dm.Stop()
			if err != nil {
				if errors.Is(err, daemon.ErrNotRunning) {
					return errors.Wrapf(err, "no live server recorded in %s", dm.PIDFile())
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stopped oculus server (PID: %d, removed %s)\n", pid, dm.PIDFile())
			return nil
		},
	}
}
