package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/buckleypaul/catbot/internal/atomicfile"
)

const (
	DefaultArduinoCLI      = "arduino-cli"
	DefaultPython          = "python"
	DefaultScript          = "src/raspi/main.py"
	DefaultSketchDir       = "src/arduino"
	DefaultVendor          = "arduino"
	DefaultBoardConfigFile = "catbot.conf"
	DefaultBaudRate        = 115200

	// DirName is the per-project directory holding config and history.
	DirName = ".catbot"
)

// Config holds all catbot configuration.
type Config struct {
	ArduinoCLI     string `json:"arduino_cli,omitempty"`
	Python         string `json:"python,omitempty"`
	Script         string `json:"script,omitempty"`
	SketchDir      string `json:"sketch_dir,omitempty"`
	Vendor         string `json:"vendor,omitempty"`
	BoardConfig    string `json:"board_config,omitempty"`
	SerialBaudRate int    `json:"serial_baud_rate,omitempty"`
	VenvPath       string `json:"venv_path,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		ArduinoCLI:     DefaultArduinoCLI,
		Python:         DefaultPython,
		Script:         DefaultScript,
		SketchDir:      DefaultSketchDir,
		Vendor:         DefaultVendor,
		BoardConfig:    DefaultBoardConfigFile,
		SerialBaudRate: DefaultBaudRate,
	}
}

// Load reads and merges global and project configs.
// Order: defaults → global (~/.config/catbot/config.json) → project (.catbot/config.json).
// A layer that cannot be read or parsed is skipped and reported in the
// returned error; the Config still carries every layer that did load.
func Load(projectRoot string) (Config, error) {
	cfg := Defaults()
	var errs []error

	if home, err := os.UserHomeDir(); err == nil {
		errs = append(errs, mergeFromFile(&cfg, filepath.Join(home, ".config", "catbot", "config.json")))
	}

	if projectRoot != "" {
		errs = append(errs, mergeFromFile(&cfg, filepath.Join(projectRoot, DirName, "config.json")))
	}

	return cfg, errors.Join(errs...)
}

// Path returns the project .catbot/config.json, or the global config file
// if global is true.
func Path(projectRoot string, global bool) (string, error) {
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "catbot", "config.json"), nil
	}
	return filepath.Join(projectRoot, DirName, "config.json"), nil
}

// LoadFile reads a single config file without defaults. A missing file
// yields an empty Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the project .catbot/config.json by default,
// or to the global config if global is true.
func Save(cfg Config, projectRoot string, global bool) error {
	path, err := Path(projectRoot, global)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return atomicfile.Write(path, append(data, '\n'), 0o644)
}

// BoardConfigPath resolves the board config file against the project root.
func (c Config) BoardConfigPath(projectRoot string) string {
	if filepath.IsAbs(c.BoardConfig) {
		return c.BoardConfig
	}
	return filepath.Join(projectRoot, c.BoardConfig)
}

// setters maps JSON keys to their assignment.
var setters = map[string]func(*Config, string) error{
	"arduino_cli":  func(c *Config, v string) error { c.ArduinoCLI = v; return nil },
	"python":       func(c *Config, v string) error { c.Python = v; return nil },
	"script":       func(c *Config, v string) error { c.Script = v; return nil },
	"sketch_dir":   func(c *Config, v string) error { c.SketchDir = v; return nil },
	"vendor":       func(c *Config, v string) error { c.Vendor = v; return nil },
	"board_config": func(c *Config, v string) error { c.BoardConfig = v; return nil },
	"venv_path":    func(c *Config, v string) error { c.VenvPath = v; return nil },
	"serial_baud_rate": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("serial_baud_rate must be a positive integer, got %q", v)
		}
		c.SerialBaudRate = n
		return nil
	},
}

// Set assigns value to the field with the given JSON key.
func Set(cfg *Config, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %v)", key, Keys())
	}
	return set(cfg, value)
}

// Keys lists the settable config keys.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mergeFromFile(cfg *Config, path string) error {
	fileCfg, err := LoadFile(path)
	if err != nil {
		return err
	}

	if fileCfg.ArduinoCLI != "" {
		cfg.ArduinoCLI = fileCfg.ArduinoCLI
	}
	if fileCfg.Python != "" {
		cfg.Python = fileCfg.Python
	}
	if fileCfg.Script != "" {
		cfg.Script = fileCfg.Script
	}
	if fileCfg.SketchDir != "" {
		cfg.SketchDir = fileCfg.SketchDir
	}
	if fileCfg.Vendor != "" {
		cfg.Vendor = fileCfg.Vendor
	}
	if fileCfg.BoardConfig != "" {
		cfg.BoardConfig = fileCfg.BoardConfig
	}
	if fileCfg.SerialBaudRate != 0 {
		cfg.SerialBaudRate = fileCfg.SerialBaudRate
	}
	if fileCfg.VenvPath != "" {
		cfg.VenvPath = fileCfg.VenvPath
	}
	return nil
}
