package cmd

import (
	"errors"
	"fmt"

	"ccs/config"
	"ccs/internal/logging"
	"ccs/internal/notify"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// app carries what every command needs once flags are parsed
type app struct {
	v        *viper.Viper
	settings Settings
	log      zerolog.Logger
	store    *config.Store
}

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: newViper(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "ccs",
		Short: "Manage claude-code-router providers, models and routers",
		Long: `ccs edits the claude-code-router config file (~/.claude-code-router/config.json).

It lists providers and models, points router entries at models, adds and
deletes providers, refreshes model lists from provider APIs and notifies
the CCR service after every change. Fields it does not manage are kept as
they are.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetVersionTemplate(`ccs {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	root.PersistentFlags().String("config", "", "path to the CCR config file (default ~/.claude-code-router/config.json)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log diagnostics to stderr")
	_ = a.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(
		newLsCmd(a),
		newShowCmd(a),
		newChangeCmd(a),
		newSetCmd(a),
		newAddCmd(a),
		newDeleteCmd(a),
		newUpdateCmd(a),
		newRestoreCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	s, err := loadSettings(a.v)
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	a.settings = s
	a.log = logging.New(cmd.ErrOrStderr(), s.LogLevel, verbose)
	a.store = config.NewStore(s.ConfigPath,
		config.WithBackups(s.Backups),
		config.WithLogger(a.log),
	)
	a.log.Debug().Str("config", s.ConfigPath).Msg("settings loaded")
	return nil
}

func (a *app) notifier() *notify.Notifier {
	return notify.New(a.settings.CCRBin, a.settings.RestartArgs,
		notify.WithPIDFile(a.settings.PIDFile),
		notify.WithLogger(a.log),
	)
}

// afterWrite tells CCR about a change that has already been saved.
// Failures are warnings; the write stands.
func (a *app) afterWrite(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	if noRestart, _ := cmd.Flags().GetBool("no-restart"); noRestart {
		printInfo(out, "Configuration updated without restarting CCR service")
		return
	}

	n := a.notifier()
	res, err := n.Restart(cmd.Context())
	switch {
	case errors.Is(err, notify.ErrCommandNotFound):
		printWarning(out, "Warning: '%s' command not found. Install claude-code-router or run '%s' yourself.",
			a.settings.CCRBin, n.CommandLine())
	case err != nil:
		printWarning(out, "Warning: failed to restart CCR service: %v", err)
	case res.Skipped:
		printInfo(out, "CCR service is not running, the new config applies on its next start")
	default:
		printSuccess(out, "CCR service notified (%s)", res.Command)
	}
}

// runSubcommandGroup backs parent verbs like `add` and `delete`: help when
// called bare, an error for anything that is not one of their subcommands
func runSubcommandGroup(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unknown subcommand %q for %q, see '%s --help'",
			config.ErrInvalidValue, args[0], cmd.CommandPath(), cmd.CommandPath())
	}
	return cmd.Help()
}

func addNoRestartFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-restart", false, "write the config without notifying the CCR service")
}

// Execute runs the command tree and prints any error
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}
	return nil
}
