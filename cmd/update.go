package cmd

import (
	"fmt"
	"strings"

	"ccs/config"
	"ccs/config/models"
	"ccs/internal/upstream"

	"github.com/spf13/cobra"
)

// providerUpdate is what update actually applied to one provider
type providerUpdate struct {
	name     string
	added    []string
	removed  []string
	retained []string
}

func newUpdateCmd(a *app) *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh model lists from provider APIs",
		Long: `Fetch the model list of every provider (or just --provider) from its API
and merge it into the config. New models are added. Models the provider no
longer reports are removed unless a router entry still points at them.
Providers that cannot be reached keep their models.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			doc, err := a.store.Load()
			if err != nil {
				return err
			}

			targets := doc.Providers()
			if only != "" {
				p, ok := doc.Provider(only)
				if !ok {
					return fmt.Errorf("%w: provider '%s' not found in config", config.ErrUnknownProvider, only)
				}
				targets = []models.Provider{p}
			}
			if len(targets) == 0 {
				printWarning(out, "No providers found in config")
				return nil
			}

			fetcher := upstream.NewFetcher(
				upstream.WithTimeout(a.settings.HTTPTimeout),
				upstream.WithLogger(a.log),
			)
			var updates []providerUpdate
			for _, p := range targets {
				printInfo(out, "Fetching models from %s (%s)...", p.Name, p.APIBaseURL)
				res := fetcher.FetchModels(cmd.Context(), p.APIBaseURL, p.APIKey)
				for _, w := range res.Warnings {
					printWarning(out, "  %s", w)
				}
				if len(res.Models) == 0 {
					printWarning(out, "No models fetched from %s. Keeping existing models.", p.Name)
				}

				updates = append(updates, applyMerge(cmd, doc, p, res.Models))
			}

			if !doc.Changed() {
				printSuccess(out, "All model lists are up to date")
				return nil
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			for _, u := range updates {
				printUpdateSummary(cmd, u)
			}
			a.afterWrite(cmd)
			return nil
		},
	}

	cmd.Flags().StringVarP(&only, "provider", "p", "", "only update this provider")
	addNoRestartFlag(cmd)
	return cmd
}

// applyMerge edits doc per the merge plan and records what was applied.
// Models the document rejects are reported and skipped.
func applyMerge(cmd *cobra.Command, doc *config.Document, p models.Provider, fetched []string) providerUpdate {
	inUse := func(model string) bool {
		return len(doc.RoutersReferencing(p.Name, model)) > 0
	}
	plan := upstream.Merge(p.Models, fetched, inUse)

	u := providerUpdate{name: p.Name, retained: plan.Retained}
	for _, m := range plan.Added {
		if err := doc.AddModel(p.Name, m); err != nil {
			printWarning(cmd.OutOrStdout(), "  Skipping model '%s': %v", m, err)
			continue
		}
		u.added = append(u.added, m)
	}
	for _, m := range plan.Removed {
		if err := doc.RemoveModelFrom(p.Name, m); err != nil {
			printWarning(cmd.OutOrStdout(), "  Could not remove model '%s': %v", m, err)
			continue
		}
		u.removed = append(u.removed, m)
	}
	return u
}

func printUpdateSummary(cmd *cobra.Command, u providerUpdate) {
	out := cmd.OutOrStdout()
	if len(u.added) == 0 && len(u.removed) == 0 {
		printInfo(out, "%s: unchanged (%d models)", u.name, len(u.retained))
		return
	}
	printSuccess(out, "%s: %d added, %d removed, %d kept", u.name, len(u.added), len(u.removed), len(u.retained))
	if len(u.added) > 0 {
		fmt.Fprintf(out, "  + %s\n", strings.Join(u.added, "\n  + "))
	}
	if len(u.removed) > 0 {
		fmt.Fprintf(out, "  - %s\n", strings.Join(u.removed, "\n  - "))
	}
}
