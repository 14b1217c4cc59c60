// Package config loads the platform profile (rule tables and scan groups)
// and runtime settings for the cleaner.
//
// Values are layered, later sources winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the embedded profile for the selected platform
//  3. the user file, $XDG_CONFIG_HOME/cloudcleaner/config.toml
//  4. environment variables prefixed CLOUDCLEANER_ ("__" separates keys)
//
// Lists replace rather than merge, so user additions to the rule tables
// go under [extra]; they are appended to the profile after loading.
package config

import (
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/cloudcleaner/cloudcleaner/internal/logging"
)

// MaxDefaultWorkers caps the default worker count. Disk-bound walks stop
// gaining from more goroutines well before CPU count on most machines.
const MaxDefaultWorkers = 4

// Config is the fully loaded configuration.
type Config struct {
	Settings Settings `koanf:"settings"`
	Profile  Profile  `koanf:"profile"`
	Extra    Extra    `koanf:"extra"`
}

// Settings are runtime knobs that do not affect classification.
type Settings struct {
	// Workers bounds the discovery and deletion pools. 0 means default.
	Workers int `koanf:"workers"`

	// UseTrash makes clean move items to the trash instead of deleting.
	UseTrash bool `koanf:"use_trash"`

	HistoryFile    string `koanf:"history_file"`
	ExclusionsFile string `koanf:"exclusions_file"`
	AuditDir       string `koanf:"audit_dir"`
}

// Extra holds user additions appended to the platform profile.
type Extra struct {
	NeverDelete         []string    `koanf:"never_delete"`
	RequireConfirmation []string    `koanf:"require_confirmation"`
	Groups              []ScanGroup `koanf:"groups"`
}

// DefaultWorkers returns min(NumCPU, MaxDefaultWorkers).
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > MaxDefaultWorkers {
		n = MaxDefaultWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// DefaultConfigFile returns the user config path.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, logging.AppName, "config.toml")
}

func defaultHistoryFile() string {
	return filepath.Join(xdg.StateHome, logging.AppName, "history.jsonl")
}

func defaultExclusionsFile() string {
	return filepath.Join(xdg.ConfigHome, logging.AppName, "exclusions.json")
}

func defaultAuditDir() string {
	return filepath.Join(xdg.StateHome, logging.AppName, "audit")
}
