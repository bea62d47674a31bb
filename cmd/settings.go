package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ccs/config"
	"ccs/config/storage"
	"ccs/internal/upstream"

	"github.com/spf13/viper"
)

// Settings are the knobs that control ccs itself, as opposed to the CCR
// config it edits. Sources, lowest precedence first: defaults,
// $XDG_CONFIG_HOME/ccs/settings.yaml, CCS_* environment variables, flags.
type Settings struct {
	ConfigPath  string
	CCRBin      string
	RestartArgs []string
	PIDFile     string
	HTTPTimeout time.Duration
	Backups     int
	LogLevel    string
}

func newViper() *viper.Viper {
	v := viper.New()

	home, _ := os.UserHomeDir()
	ccrDir := filepath.Join(home, ".claude-code-router")

	v.SetDefault("config", filepath.Join(ccrDir, "config.json"))
	v.SetDefault("ccr_bin", "ccr")
	v.SetDefault("restart_args", []string{"stop"})
	v.SetDefault("pid_file", filepath.Join(ccrDir, ".claude-code-router.pid"))
	v.SetDefault("http_timeout", upstream.DefaultTimeout)
	v.SetDefault("backups", storage.DefaultBackupRetention)
	v.SetDefault("log_level", "warn")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "ccs"))
	}
	v.SetConfigName("settings")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CCS")
	v.AutomaticEnv()
	return v
}

// loadSettings reads the settings file, if any, and resolves every key
func loadSettings(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read ccs settings: %w", err)
		}
	}

	s := Settings{
		ConfigPath:  v.GetString("config"),
		CCRBin:      v.GetString("ccr_bin"),
		RestartArgs: v.GetStringSlice("restart_args"),
		PIDFile:     v.GetString("pid_file"),
		HTTPTimeout: v.GetDuration("http_timeout"),
		Backups:     v.GetInt("backups"),
		LogLevel:    v.GetString("log_level"),
	}
	if s.ConfigPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return Settings{}, err
		}
		s.ConfigPath = path
	}
	if s.CCRBin == "" {
		s.CCRBin = "ccr"
	}
	if s.HTTPTimeout <= 0 {
		s.HTTPTimeout = upstream.DefaultTimeout
	}
	if s.Backups < 0 {
		s.Backups = 0
	}
	return s, nil
}
