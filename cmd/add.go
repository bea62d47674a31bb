package cmd

import (
	"fmt"
	"strings"

	"ccs/config"
	"ccs/config/models"
	"ccs/config/validation"
	"ccs/internal/providers"
	"ccs/internal/upstream"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a provider or a model",
		Long:  "Add a provider to the CCR config, or add a model to an existing provider.",
		Args:  cobra.ArbitraryArgs,
		RunE:  runSubcommandGroup,
	}
	cmd.AddCommand(newAddProviderCmd(a), newAddModelCmd(a))
	return cmd
}

func newAddProviderCmd(a *app) *cobra.Command {
	var (
		name    string
		baseURL string
		apiKey  string
		list    []string
		noProbe bool
	)

	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Add a provider",
		Long: `Add a provider to the CCR config.

--base-url may be omitted when --name is a known preset (` + strings.Join(providers.List(), ", ") + `).
Otherwise the URL is probed with and without "/v1" and the form the server
answers on is stored. URLs that already end in an endpoint path are kept.`,
		Example: `  ccs add provider --name deepseek --api-key sk-xxx
  ccs add provider --name local --base-url http://localhost:8000 --model qwen3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			iv := validation.NewInputValidator()
			if err := iv.ValidateProviderName(name); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
			}

			fromPreset := false
			if baseURL == "" {
				preset, err := providers.Get(name)
				if err != nil {
					return fmt.Errorf("%w: --base-url is required unless --name is one of: %s",
						config.ErrInvalidValue, strings.Join(providers.List(), ", "))
				}
				if err := preset.ValidateConfig(apiKey); err != nil {
					return fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
				}
				baseURL = preset.DefaultBaseURL()
				fromPreset = true
			}
			if err := iv.ValidateURL(baseURL); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
			}
			for _, m := range list {
				if err := iv.ValidateModelName(strings.TrimSpace(m)); err != nil {
					return fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
				}
			}

			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			if _, exists := doc.Provider(name); exists {
				return fmt.Errorf("%w: provider '%s' already exists", config.ErrDuplicateProvider, name)
			}

			stored := baseURL
			if !fromPreset && !noProbe {
				prober := upstream.NewProber(
					upstream.WithTimeout(a.settings.HTTPTimeout),
					upstream.WithLogger(a.log),
				)
				stored = prober.ProbeBaseURL(cmd.Context(), baseURL, apiKey)
			}

			p := models.Provider{Name: name, APIBaseURL: stored, APIKey: apiKey, Models: list}
			if err := doc.AddProvider(p); err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			if stored != baseURL {
				printSuccess(out, "Added provider: %s (base URL adjusted to: %s)", name, stored)
			} else {
				printSuccess(out, "Added provider: %s", name)
			}
			printInfo(out, "Tip: Run 'ccs update' to fetch models from the new provider")
			a.afterWrite(cmd)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "provider name (required)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().StringSliceVarP(&list, "model", "m", nil, "model served by the provider (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "store --base-url without probing it")
	_ = cmd.MarkFlagRequired("name")
	addNoRestartFlag(cmd)
	return cmd
}

func newAddModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "model <provider> <model>",
		Short:   "Add a model to a provider",
		Long:    "Add a model to an existing provider's model list.",
		Example: "  ccs add model openrouter google/gemini-2.5-pro",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, model := args[0], strings.TrimSpace(args[1])

			doc, err := a.store.Load()
			if err != nil {
				return err
			}
			if err := doc.AddModel(provider, model); err != nil {
				return err
			}
			if err := a.store.Save(doc); err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Added model '%s' to provider '%s'", model, provider)
			a.afterWrite(cmd)
			return nil
		},
	}
	addNoRestartFlag(cmd)
	return cmd
}
