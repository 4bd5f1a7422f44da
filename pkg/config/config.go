/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/UbimoLTD/listfile/pkg/compressors"
)

// Config holds the listfile CLI's defaults.
type Config struct {
	BlockSizeMultiplier uint8  `yaml:"block_size_multiplier"`
	Compress            string `yaml:"compress"`
	CompressLevel       int    `yaml:"compress_level"`
	VerifyChecksums     bool   `yaml:"verify_checksums"`
	OutputDir           string `yaml:"output_dir"`
}

// DefaultConfig returns the CLI's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		BlockSizeMultiplier: 1,
		Compress:            "none",
		CompressLevel:       1,
		VerifyChecksums:     true,
		OutputDir:           "./data",
	}
}

// CompressMethod maps the configured codec name to its registry id.
func (c *Config) CompressMethod() (compressors.Method, error) {
	switch c.Compress {
	case "", "none":
		return compressors.Unknown, nil
	case "zlib":
		return compressors.Zlib, nil
	case "snappy":
		return compressors.Snappy, nil
	case "lz4":
		return compressors.LZ4, nil
	default:
		return 0, fmt.Errorf("config: unknown compress method %q", c.Compress)
	}
}

// LoadConfig loads configuration from the specified path.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Resolve a relative path against the working directory
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions.
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./listfile.yaml"
	}
	configDir := filepath.Join(homeDir, ".config", "listfile")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
