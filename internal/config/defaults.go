// Package config provides centralized configuration defaults for jtalkipa.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up by Load.
const FileName = "jtalkipa.toml"

// ConfigFile represents the structure of jtalkipa.toml
type ConfigFile struct {
	Defaults Defaults `toml:"defaults"`

	// Path is the file the values came from, empty for fallbacks.
	Path string `toml:"-"`
	// Unknown lists keys present in the file that nothing reads.
	Unknown []string `toml:"-"`
}

// Defaults holds all default values
type Defaults struct {
	MapFile    string `toml:"map_file"`
	RulesFile  string `toml:"rules_file"`
	LongVowels bool   `toml:"long_vowels"`
	Plain      bool   `toml:"plain"`
	Workers    int    `toml:"workers"`
	OutputDir  string `toml:"output_dir"`
	Quiet      bool   `toml:"quiet"`
	Verbose    bool   `toml:"verbose"`
	Metrics    bool   `toml:"metrics"`
}

// Hardcoded fallback defaults (used if jtalkipa.toml not found)
var fallbackDefaults = Defaults{
	MapFile:    "",
	RulesFile:  "",
	LongVowels: false,
	Plain:      false,
	Workers:    0,
	OutputDir:  "output",
	Quiet:      false,
	Verbose:    false,
	Metrics:    false,
}

// loaded holds the parsed config (nil if not loaded yet)
var loaded *ConfigFile

// Load finds jtalkipa.toml near the working directory or the executable
// and decodes it. Without a readable file the fallbacks apply.
func Load() *ConfigFile {
	if loaded != nil {
		return loaded
	}

	paths := []string{
		FileName,
		filepath.Join("..", FileName),
		filepath.Join("..", "..", FileName),
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(dir, FileName),
			filepath.Join(dir, "..", FileName),
			filepath.Join(dir, "..", "..", FileName),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if cfg, err := LoadFile(path); err == nil {
				loaded = cfg
				return loaded
			}
		}
	}

	loaded = &ConfigFile{Defaults: fallbackDefaults}
	return loaded
}

// LoadFile decodes an explicit config file. Keys missing from the file keep
// their fallback values.
func LoadFile(path string) (*ConfigFile, error) {
	cfg := ConfigFile{Defaults: fallbackDefaults}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Defaults.Workers < 0 {
		return nil, fmt.Errorf("%s: workers must not be negative, got %d", path, cfg.Defaults.Workers)
	}

	cfg.Path = path
	for _, key := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, key.String())
	}
	return &cfg, nil
}

// MaxWorkers is the cap for parallel workers
const MaxWorkers = 8

// Workers resolves a requested worker count: 0 means one per CPU, and
// the result never exceeds MaxWorkers.
func Workers(requested, numCPU int) int {
	if requested <= 0 {
		requested = numCPU
	}
	if requested > MaxWorkers {
		requested = MaxWorkers
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
