package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/juju/collections/set"

	"fleetgear/pkg/logging"
)

// Storage reads entity definition files (plugins, ...) from type-specific
// subdirectories of the configuration directory.
type Storage struct {
	mu         sync.RWMutex
	configPath string // Optional custom config path - when set, uses this path; otherwise uses default ~/.config/fleetgear
}

// NewStorage creates a new Storage instance using the default configuration directory
func NewStorage() *Storage {
	return &Storage{}
}

// NewStorageWithPath creates a new Storage instance with a custom config path
func NewStorageWithPath(configPath string) *Storage {
	return &Storage{
		configPath: configPath,
	}
}

// Load retrieves data for the given entity type and name.
// entityType: subdirectory name (plugins)
// name: filename without extension
func (ds *Storage) Load(entityType string, name string) ([]byte, error) {
	filePath, err := ds.Path(entityType, name)
	if err != nil {
		return nil, err
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	logging.Debug("Storage", "Loaded %s/%s from %s", entityType, name, filePath)
	return data, nil
}

// Path returns the file backing entityType/name, preferring .yaml over .yml.
func (ds *Storage) Path(entityType string, name string) (string, error) {
	if entityType == "" {
		return "", fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	entityDir, err := ds.resolveEntityDir(entityType)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory for entity type %s: %w", entityType, err)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		filePath := filepath.Join(entityDir, name+ext)
		if _, err := os.Stat(filePath); err == nil {
			return filePath, nil
		}
	}
	return "", fmt.Errorf("entity %s/%s not found", entityType, name)
}

// List returns all available names for the given entity type, sorted.
func (ds *Storage) List(entityType string) ([]string, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	entityPath, err := ds.resolveEntityDir(entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration directory: %w", err)
	}

	names, err := ds.listFilesInDirectory(entityPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list %s: %w", entityType, err)
	}

	logging.Debug("Storage", "Listed %d %s entities", len(names), entityType)
	return names, nil
}

// getConfigDir returns the configuration directory to use
func (ds *Storage) getConfigDir() (string, error) {
	if ds.configPath != "" {
		return ds.configPath, nil
	}

	return GetUserConfigDir()
}

func (ds *Storage) resolveEntityDir(entityType string) (string, error) {
	configDir, err := ds.getConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, entityType), nil
}

// listFilesInDirectory lists all .yaml and .yml files in a directory and returns their base names
func (ds *Storage) listFilesInDirectory(dirPath string) ([]string, error) {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	var allFiles []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		files, err := filepath.Glob(filepath.Join(dirPath, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s files: %w", pattern, err)
		}
		allFiles = append(allFiles, files...)
	}

	names := set.NewStrings()
	for _, filePath := range allFiles {
		basename := filepath.Base(filePath)
		names.Add(strings.TrimSuffix(basename, filepath.Ext(basename)))
	}

	return names.SortedValues(), nil
}
