/*
Package config manages TOML config for the schemaserve services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/dtg01100/dbutils-sub000/internal/utils"
)

// Config holds the entire config structure.
type Config struct {
	Server ServerConfig `toml:"server"`
	Search SearchConfig `toml:"search"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxQueryLen int `toml:"max_query_len" env:"SCHEMASERVE_MAX_QUERY_LEN"`
	MaxRows     int `toml:"max_rows" env:"SCHEMASERVE_MAX_ROWS"`
}

// SearchConfig holds the engine tunables. The remark weights are kept as
// plain configuration rather than algorithm constants.
type SearchConfig struct {
	TrieCap             int     `toml:"trie_cap" env:"SCHEMASERVE_TRIE_CAP"`
	ChunkSize           int     `toml:"chunk_size" env:"SCHEMASERVE_CHUNK_SIZE"`
	TableRemarksWeight  float64 `toml:"table_remarks_weight" env:"SCHEMASERVE_TABLE_REMARKS_WEIGHT"`
	ColumnRemarksWeight float64 `toml:"column_remarks_weight" env:"SCHEMASERVE_COLUMN_REMARKS_WEIGHT"`
}

// CliConfig holds interactive CLI options.
type CliConfig struct {
	DefaultLimit int    `toml:"default_limit" env:"SCHEMASERVE_CLI_LIMIT"`
	DefaultMode  string `toml:"default_mode" env:"SCHEMASERVE_CLI_MODE"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxQueryLen: 128,
			MaxRows:     200,
		},
		Search: SearchConfig{
			TrieCap:             200,
			ChunkSize:           50,
			TableRemarksWeight:  0.5,
			ColumnRemarksWeight: 0.8,
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			DefaultMode:  "tables",
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/schemaserve
// 2. Current executable dir
// 3. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "schemaserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	return utils.GetExecutableDir()
}

// GetDefaultConfigPath returns the default path for config.toml.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/schemaserve/config.toml
// 3. Builtin defaults
// Environment overrides apply on top of whatever was loaded.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return applyEnv(DefaultConfig()), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return applyEnv(DefaultConfig()), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates a default one if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return applyEnv(DefaultConfig()), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
		} else {
			log.Debugf("Created default config file at: %s", configPath)
		}
		return applyEnv(config), nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, then applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		log.Warnf("Could not parse configuration from %s: %v. Using defaults.", configPath, err)
		return applyEnv(DefaultConfig()), nil
	}
	return applyEnv(config), nil
}

// applyEnv overlays SCHEMASERVE_* environment variables onto the config.
func applyEnv(config *Config) *Config {
	if err := env.Parse(config); err != nil {
		log.Warnf("Failed to apply environment overrides: %v", err)
	}
	return config
}

// SaveConfig saves into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
