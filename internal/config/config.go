// Package config persists which vault the user works with and how long an
// unlocked session may sit idle.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/vaulterr"
)

const (
	// FileName is the name of the config file inside the config directory.
	FileName = "config.json"

	// DefaultAutoLockMinutes applies when the config is missing or does not
	// set auto_lock_minutes.
	DefaultAutoLockMinutes uint32 = 5

	appDir = "ironvault"
)

// Config is the on-disk configuration.
type Config struct {
	DataPath        string `json:"data_path"`
	AutoLockMinutes uint32 `json:"auto_lock_minutes"`

	// Window geometry written by desktop front ends. Carried through
	// unchanged on every write.
	WindowWidth  *float64 `json:"window_width,omitempty"`
	WindowHeight *float64 `json:"window_height,omitempty"`
	WindowX      *float64 `json:"window_x,omitempty"`
	WindowY      *float64 `json:"window_y,omitempty"`
}

// Store reads and writes config.json in a directory.
type Store struct {
	dir string
}

// DefaultDir returns the per-user config directory for ironvault.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// NewStore returns a Store rooted at dir. Nothing is created until the first
// write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the config directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the location of config.json.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// IsInitialized reports whether a config file exists.
func (s *Store) IsInitialized() (bool, error) {
	_, err := os.Stat(s.Path())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: %w", s.Path(), err)
	}
}

// Load reads the config. It returns ErrNotInitialized when no config file
// exists.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, vaulterr.E(vaulterr.NotInitialized, "config.Load", err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path(), err)
	}

	cfg := &Config{AutoLockMinutes: DefaultAutoLockMinutes}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path(), err)
	}
	return cfg, nil
}

// VaultPath returns the configured vault location, so a Store can serve as
// the vault's path resolver.
func (s *Store) VaultPath(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	if cfg.DataPath == "" {
		return "", vaulterr.E(vaulterr.NotInitialized, "config.VaultPath", fmt.Errorf("%s has no data_path", s.Path()))
	}
	return cfg.DataPath, nil
}

// SetVaultPath records path as the current vault, creating the config with
// defaults if needed. Other fields are preserved.
func (s *Store) SetVaultPath(path string) error {
	cfg, err := s.Load()
	switch {
	case errors.Is(err, vaulterr.ErrNotInitialized):
		cfg = &Config{AutoLockMinutes: DefaultAutoLockMinutes}
	case err != nil:
		return err
	}
	cfg.DataPath = path
	return s.write(cfg)
}

// AutoLockMinutes returns the idle timeout in minutes. Zero disables
// auto-lock. An uninitialised config yields the default.
func (s *Store) AutoLockMinutes() (uint32, error) {
	cfg, err := s.Load()
	if errors.Is(err, vaulterr.ErrNotInitialized) {
		return DefaultAutoLockMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	return cfg.AutoLockMinutes, nil
}

// SetAutoLockMinutes updates the idle timeout. The config must already exist.
func (s *Store) SetAutoLockMinutes(minutes uint32) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	cfg.AutoLockMinutes = minutes
	return s.write(cfg)
}

func (s *Store) write(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := util.AtomicWriteFile(s.Path(), data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.Path(), err)
	}
	return nil
}
