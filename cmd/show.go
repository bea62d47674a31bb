package cmd

import (
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current router configuration",
		Long:  "Show which provider,model each router type points at, and the long context threshold when set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			renderRouter(cmd.OutOrStdout(), doc.Router())
			return nil
		},
	}
}
