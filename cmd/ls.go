package cmd

import (
	"github.com/spf13/cobra"
)

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List providers and their models",
		Long:    "List every provider in the CCR config with its masked API key and the models it serves.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			renderModels(cmd.OutOrStdout(), doc.Providers())
			return nil
		},
	}
}
