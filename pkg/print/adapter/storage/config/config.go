// Package config defines the configuration structure of storage adapter
// connections.
package config

// StorageConfig holds the settings of one named storage connection, decoded
// from the "adapter.storage.<name>" section of the application
// configuration.
type StorageConfig struct {
	// Type is the provider type identifier (e.g. "local").
	Type string `yaml:"type"`
	// BaseDir is the base directory of the store.
	BaseDir string `yaml:"base_dir"`
}
