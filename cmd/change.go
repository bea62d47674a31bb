package cmd

import (
	"errors"
	"fmt"

	"ccs/config"
	"ccs/config/models"
	"ccs/config/validation"
	"ccs/internal/tui"

	"github.com/spf13/cobra"
)

func newChangeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change <router> [provider,model | model]",
		Short: "Point a router type at a model",
		Long: `Point a router type (default, background, think, longContext, webSearch)
at a model. The value is either "provider,model" or a bare model name that
exactly one provider lists. Without a value an interactive picker opens.`,
		Example: `  ccs change default openrouter,anthropic/claude-sonnet-4
  ccs change think deepseek-reasoner
  ccs change background`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			routerType := args[0]
			if err := validation.ValidateRouterType(routerType); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidRouterType, err)
			}

			doc, err := a.store.Load()
			if err != nil {
				return err
			}

			var ref models.ModelRef
			if len(args) == 2 {
				ref, err = doc.Resolve(args[1])
				if err != nil {
					printResolveHint(cmd, doc, routerType, err)
					return err
				}
			} else {
				var chosen bool
				ref, chosen, err = a.pick(cmd, doc, routerType)
				if err != nil {
					return err
				}
				if !chosen {
					printInfo(cmd.OutOrStdout(), "Selection cancelled")
					return nil
				}
			}

			if err := doc.SetRouter(routerType, ref); err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Updated %s to: %s", routerType, ref)
			if routerType == models.RouterLongContext {
				printInfo(out, "Tip: Use 'ccs set %s <integer>' to set the token threshold for long context routing",
					models.LongContextThresholdKey)
			}
			a.afterWrite(cmd)
			return nil
		},
	}
	addNoRestartFlag(cmd)
	return cmd
}

func (a *app) pick(cmd *cobra.Command, doc *config.Document, routerType string) (models.ModelRef, bool, error) {
	if !isInteractiveTerminal(cmd.InOrStdin()) {
		return models.ModelRef{}, false, fmt.Errorf("%w: a model is required when not running in a terminal, e.g. ccs change %s <provider>,<model>",
			config.ErrInvalidValue, routerType)
	}
	current, _ := doc.RouterEntry(routerType)
	a.log.Debug().Str("router", routerType).Str("current", current).Msg("opening model picker")
	return tui.Pick(fmt.Sprintf("Select model for %s", routerType), doc.Pairs(), current, cmd.InOrStdin(), cmd.OutOrStdout())
}

// printResolveHint shows the models a user can choose from after a value
// did not resolve
func printResolveHint(cmd *cobra.Command, doc *config.Document, routerType string, err error) {
	out := cmd.OutOrStdout()
	var ambiguous *config.AmbiguousModelError
	switch {
	case errors.As(err, &ambiguous):
		printWarning(out, "Specify the provider explicitly, e.g. ccs change %s %s,%s",
			routerType, ambiguous.Providers[0], ambiguous.Model)
	case errors.Is(err, config.ErrUnknownModel), errors.Is(err, config.ErrUnknownProvider):
	default:
		return
	}
	fmt.Fprintln(out, "Available models:")
	renderModels(out, doc.Providers())
}
