package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ccs/config/storage"
	syncpkg "ccs/config/sync"

	"github.com/rs/zerolog"
)

// Store reads and writes the CCR config file at a fixed path
type Store struct {
	path    string
	backups int
	log     zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithBackups sets how many timestamped backups Save keeps. Zero disables backups.
func WithBackups(n int) Option {
	return func(s *Store) {
		s.backups = n
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a Store bound to path
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		backups: storage.DefaultBackupRetention,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns ~/.claude-code-router/config.json
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude-code-router", "config.json"), nil
}

// Path returns the config file location
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the config file
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Int("providers", len(doc.Providers())).Msg("config loaded")
	return doc, nil
}

// Save writes doc back atomically, keeping fields ccs does not manage intact
func (s *Store) Save(doc *Document) error {
	if err := syncpkg.VerifyPreserved(doc.original, doc.raw, providersKey, routerKey); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := storage.AtomicFileUpdate(s.path, doc.Bytes(), s.backups); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	doc.original = append(doc.original[:0:0], doc.raw...)
	s.log.Debug().Str("path", s.path).Int("backups", s.backups).Msg("config saved")
	return nil
}

// Restore replaces the config file with its most recent backup and
// returns the backup used. The replaced file is itself backed up first.
func (s *Store) Restore() (string, error) {
	bm := storage.NewBackupManager(s.backups)
	backups, err := bm.ListBackups(s.path)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("%w: no backups of %s", ErrNotFound, s.path)
	}

	latest := backups[len(backups)-1]
	data, err := os.ReadFile(latest)
	if err != nil {
		return "", fmt.Errorf("failed to read backup: %w", err)
	}
	if _, err := ParseDocument(data); err != nil {
		return "", fmt.Errorf("backup %s: %w", latest, err)
	}
	if err := storage.AtomicFileUpdate(s.path, data, s.backups); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	s.log.Debug().Str("backup", latest).Msg("config restored")
	return latest, nil
}
