package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fleetgear/pkg/logging"
)

const (
	userConfigDir  = ".config/fleetgear"
	configFileName = "config.yaml"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// GetUserConfigDir returns ~/.config/fleetgear.
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

func GetDefaultConfigPathOrPanic() string {
	dir, err := GetUserConfigDir()
	if err != nil {
		panic(err)
	}
	return dir
}

// LoadConfig loads config.yaml from configPath on top of the defaults. A
// missing file is not an error.
func LoadConfig(configPath string) (FleetgearConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return FleetgearConfig{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return FleetgearConfig{}, NewConfigurationErrorWithDetails(configFilePath, "config", ErrorTypeParse,
			"malformed configuration", err.Error(),
			[]string{"Check the YAML syntax and field names of config.yaml"})
	}

	if err := validateConfig(configFilePath, config); err != nil {
		return FleetgearConfig{}, err
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

func validateConfig(path string, config FleetgearConfig) error {
	if _, ok := logging.ParseLevel(config.LogLevel); !ok {
		return NewConfigurationErrorWithDetails(path, "config", ErrorTypeValidation,
			fmt.Sprintf("unknown logLevel %q", config.LogLevel), "",
			[]string{"Use one of debug, info, warn, error"})
	}
	if config.LogFormat != string(logging.FormatText) && config.LogFormat != string(logging.FormatJSON) {
		return NewConfigurationErrorWithDetails(path, "config", ErrorTypeValidation,
			fmt.Sprintf("unknown logFormat %q", config.LogFormat), "",
			[]string{"Use text or json"})
	}
	if config.FanOut.Concurrency < 0 || config.Remote.Concurrency < 0 {
		return NewConfigurationError(path, "config", ErrorTypeValidation, "concurrency must not be negative")
	}
	return nil
}

// InventoryPath returns the inventory file location; relative paths are
// resolved against configPath.
func InventoryPath(configPath string, config FleetgearConfig) string {
	file := config.Inventory.File
	if file == "" {
		file = DefaultInventoryFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(configPath, file)
}
