package cmd

import (
	"errors"
	"fmt"
	"strings"

	"ccs/config"
	"ccs/config/models"
	"ccs/config/validation"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm"},
		Short:   "Delete a provider, a model or a router entry",
		Long: `Delete a provider, a model or a router entry from the CCR config.
Every deletion asks for confirmation unless --yes is given.`,
		Args: cobra.ArbitraryArgs,
		RunE: runSubcommandGroup,
	}
	cmd.AddCommand(
		newDeleteProviderCmd(a),
		newDeleteModelCmd(a),
		newDeleteRouterCmd(a),
	)
	return cmd
}

func addDeleteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	addNoRestartFlag(cmd)
}

// confirmDeletion returns true when --yes is set or the user typed "y"
func confirmDeletion(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	if confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
		return true
	}
	printInfo(cmd.OutOrStdout(), "Deletion cancelled")
	return false
}

func warnReferencingRouters(cmd *cobra.Command, what string, routers []string) {
	if len(routers) == 0 {
		return
	}
	printWarning(cmd.OutOrStdout(), "Warning: router entries still reference %s: %s. Use 'ccs change' to point them elsewhere.",
		what, strings.Join(routers, ", "))
}

func newDeleteProviderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider <name>",
		Short: "Delete a provider and all of its models",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			p, ok := doc.Provider(name)
			if !ok {
				return fmt.Errorf("%w: provider '%s' not found", config.ErrNotFound, name)
			}
			if !confirmDeletion(cmd, fmt.Sprintf("Delete provider '%s' and its %d model(s)?", name, len(p.Models))) {
				return nil
			}

			routers := doc.RoutersReferencing(name, "")
			if err := doc.DeleteProvider(name); err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Deleted provider: %s", name)
			warnReferencingRouters(cmd, fmt.Sprintf("provider '%s'", name), routers)
			a.afterWrite(cmd)
			return nil
		},
	}
	addDeleteFlags(cmd)
	return cmd
}

func newDeleteModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model <model>",
		Short: "Delete a model from every provider that lists it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := args[0]
			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			listed := doc.ProvidersForModel(model)
			if len(listed) == 0 {
				return fmt.Errorf("%w: model '%s' not found in any provider", config.ErrNotFound, model)
			}
			if !confirmDeletion(cmd, fmt.Sprintf("Delete model '%s' from: %s?", model, strings.Join(listed, ", "))) {
				return nil
			}

			routers := doc.RoutersReferencing("", model)
			removedFrom, thresholdDropped, err := doc.DeleteModel(model)
			if err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Deleted model '%s' from: %s", model, strings.Join(removedFrom, ", "))
			if thresholdDropped {
				printInfo(out, "Also removed %s", models.LongContextThresholdKey)
			}
			warnReferencingRouters(cmd, fmt.Sprintf("model '%s'", model), routers)
			a.afterWrite(cmd)
			return nil
		},
	}
	addDeleteFlags(cmd)
	return cmd
}

func newDeleteRouterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "router <type>",
		Short: "Delete a router entry",
		Long: `Delete a router entry. The default router cannot be deleted. Deleting
longContext also removes longContextThreshold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routerType := args[0]
			if err := validation.ValidateRouterType(routerType); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidRouterType, err)
			}
			if routerType == models.RouterDefault {
				return config.ErrCannotDeleteDefault
			}

			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entry, ok := doc.RouterEntry(routerType)
			if !ok {
				printWarning(out, "Router '%s' is not set", routerType)
				return nil
			}
			if !confirmDeletion(cmd, fmt.Sprintf("Delete router '%s' (%s)?", routerType, entry)) {
				return nil
			}

			thresholdDropped, err := doc.DeleteRouter(routerType)
			if errors.Is(err, config.ErrNotFound) {
				printWarning(out, "Router '%s' is not set", routerType)
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			printSuccess(out, "Deleted router: %s", routerType)
			if thresholdDropped {
				printInfo(out, "Also removed %s", models.LongContextThresholdKey)
			}
			a.afterWrite(cmd)
			return nil
		},
	}
	addDeleteFlags(cmd)
	return cmd
}
