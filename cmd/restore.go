package cmd

import (
	"github.com/spf13/cobra"
)

func newRestoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the config from its most recent backup",
		Long: `Replace the CCR config with the newest backup taken before a write.
Backups live next to the config as config.json.backup-<timestamp>-<pid>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := a.store.Restore()
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Restored %s from %s", a.store.Path(), backup)
			a.afterWrite(cmd)
			return nil
		},
	}
	addNoRestartFlag(cmd)
	return cmd
}
