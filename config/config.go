package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"squadsync/log"
)

const ConfigFileName = "config.json"

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".squadsync"), nil
}

// Config holds the knobs for the simulation driver. The library primitives
// take their parameters at construction; this only shapes the demo workload.
type Config struct {
	// Producers is the number of goroutines enqueueing work items.
	Producers int `json:"producers"`
	// Workers is the number of goroutines consuming work items.
	Workers int `json:"workers"`
	// Items is the number of work items each producer enqueues.
	Items int `json:"items"`
	// QueueCapacity bounds the work queue buffer.
	QueueCapacity int `json:"queue_capacity"`
	// Permits caps how many workers process concurrently.
	Permits int `json:"permits"`
	// RetryIntervalMs is how long (ms) a producer backs off after the
	// queue reports it is full.
	RetryIntervalMs int `json:"retry_interval_ms"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Producers:       3,
		Workers:         5,
		Items:           50,
		QueueCapacity:   16,
		Permits:         2,
		RetryIntervalMs: 5,
	}
}

// LoadConfig loads the configuration from disk. If it cannot be done, we return the default configuration.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}

	return &config
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return atomicWriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
