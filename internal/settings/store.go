// Package settings holds the user's filtering preferences for the running
// process. Durable storage belongs to an external key-value store; this
// package only seeds itself from a defaults file.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgnsrekt/tabshell/internal/inject"
	"gopkg.in/yaml.v3"
)

// Provider supplies the filter config read at navigation time.
type Provider interface {
	FilterConfig() inject.FilterConfig
}

// Store is an in-memory Provider written only by explicit saves.
type Store struct {
	mu  sync.RWMutex
	cfg inject.FilterConfig
}

func NewStore(initial inject.FilterConfig) *Store {
	return &Store{cfg: initial}
}

func (s *Store) FilterConfig() inject.FilterConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Save replaces the stored config. The next page load picks it up; pages
// already loaded keep the script they were given.
func (s *Store) Save(cfg inject.FilterConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	slog.Info("settings saved",
		"ad_block", cfg.AdBlock,
		"tracker_block", cfg.TrackerBlock,
		"dark_mode", cfg.DarkMode,
		"alternate_dns", cfg.AlternateDNS,
	)
}

type defaultsFile struct {
	Filters inject.FilterConfig `yaml:"filters"`
}

// LoadFile reads filter defaults from a YAML file shaped like:
//
//	filters:
//	  ad_block: true
//	  tracker_block: false
//
// A missing file returns an os.ErrNotExist-wrapped error; callers fall back
// to all-disabled defaults in that case.
func LoadFile(path string) (inject.FilterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return inject.FilterConfig{}, fmt.Errorf("settings defaults: %w", err)
	}
	var f defaultsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return inject.FilterConfig{}, fmt.Errorf("settings defaults: %w", err)
	}
	return f.Filters, nil
}
