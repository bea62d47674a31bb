package cmd

import (
	"fmt"
	"strconv"

	"ccs/config"
	"ccs/config/models"

	"github.com/spf13/cobra"
)

func newSetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a router option",
		Long:  "Set a non-model router option. Currently only longContextThreshold.",
		Args:  cobra.ArbitraryArgs,
		RunE:  runSubcommandGroup,
	}
	cmd.AddCommand(newSetThresholdCmd(a))
	return cmd
}

func newSetThresholdCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   models.LongContextThresholdKey + " <integer>",
		Short: "Set the token count above which requests use the longContext router",
		Long: `Set the token count above which CCR sends requests to the longContext
router. The longContext router must already point at a model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer, got '%s'", config.ErrInvalidValue, models.LongContextThresholdKey, args[0])
			}

			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			if err := doc.SetLongContextThreshold(n); err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Updated %s to: %d", models.LongContextThresholdKey, n)
			a.afterWrite(cmd)
			return nil
		},
	}
	addNoRestartFlag(cmd)
	return cmd
}
