// Package local provides a local filesystem implementation of the storage
// adapter interfaces.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"

	storageAdapter "github.com/tigerroll/labelpress/pkg/print/adapter/storage"
	storageConfig "github.com/tigerroll/labelpress/pkg/print/adapter/storage/config"
	coreConfig "github.com/tigerroll/labelpress/pkg/print/core/config"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

const (
	// ProviderType defines the type identifier for this local storage
	// provider.
	ProviderType = "local"
)

// localStore implements the storage.Store interface for a local directory.
type localStore struct {
	cfg  storageConfig.StorageConfig
	name string
}

// Verify that localStore implements the storage.Store interface.
var _ storageAdapter.Store = (*localStore)(nil)

// NewLocalStore creates a new localStore instance. It validates the BaseDir
// configuration and creates the directory if it does not exist.
func NewLocalStore(cfg storageConfig.StorageConfig, name string) (storageAdapter.Store, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("local storage adapter '%s': base_dir must be specified in configuration", name)
	}
	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
				return nil, fmt.Errorf("local storage adapter '%s': failed to create base_dir '%s': %w", name, cfg.BaseDir, err)
			}
		} else {
			return nil, fmt.Errorf("local storage adapter '%s': failed to stat base_dir '%s': %w", name, cfg.BaseDir, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("local storage adapter '%s': base_dir '%s' is not a directory", name, cfg.BaseDir)
	}

	return &localStore{
		cfg:  cfg,
		name: name,
	}, nil
}

// Resolve returns the absolute path of name inside the store, rejecting
// paths that would escape the base directory.
func (s *localStore) Resolve(name string) (string, error) {
	fullPath := filepath.Join(s.cfg.BaseDir, name)

	absBaseDir, err := filepath.Abs(s.cfg.BaseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for base_dir '%s': %w", s.cfg.BaseDir, err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", fullPath, err)
	}
	if absFullPath != absBaseDir && !strings.HasPrefix(absFullPath, absBaseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("resolved path '%s' is outside of base_dir '%s'", fullPath, s.cfg.BaseDir)
	}
	return absFullPath, nil
}

// Exists reports whether name is present in the store.
func (s *localStore) Exists(name string) (bool, error) {
	fullPath, err := s.Resolve(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateTemp creates a new temporary file inside the store's base directory.
func (s *localStore) CreateTemp(pattern string) (*os.File, error) {
	return os.CreateTemp(s.cfg.BaseDir, pattern)
}

// Remove deletes name from the store. An absent file is logged and
// tolerated.
func (s *localStore) Remove(name string) error {
	fullPath, err := s.Resolve(name)
	if err != nil {
		return fmt.Errorf("failed to resolve path for delete: %w", err)
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Attempted to delete non-existent file '%s' (local store '%s').", fullPath, s.name)
			return nil
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}
	logger.Debugf("Deleted file '%s' (local store '%s').", fullPath, s.name)
	return nil
}

// BaseDir returns the store's base directory.
func (s *localStore) BaseDir() string {
	return s.cfg.BaseDir
}

// Name returns the connection name of this store.
func (s *localStore) Name() string {
	return s.name
}

// Close does nothing for the local filesystem store as it holds no special
// resources.
func (s *localStore) Close() error {
	logger.Debugf("Local store '%s' closed.", s.name)
	return nil
}

// LocalProvider implements the storage.Provider interface for local
// directory connections.
type LocalProvider struct {
	cfg         *coreConfig.Config
	connections map[string]storageAdapter.Store
	mu          sync.RWMutex
}

// Verify that LocalProvider implements the storage.Provider interface.
var _ storageAdapter.Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a new LocalProvider instance.
func NewLocalProvider(cfg *coreConfig.Config) *LocalProvider {
	return &LocalProvider{
		cfg:         cfg,
		connections: make(map[string]storageAdapter.Store),
	}
}

// GetConnection retrieves the Store with the given name, creating it from
// configuration on first use.
func (p *LocalProvider) GetConnection(name string) (storageAdapter.Store, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock.
	if conn, ok = p.connections[name]; ok {
		return conn, nil
	}

	storageCfg, err := p.decodeStorageConfig(name)
	if err != nil {
		return nil, err
	}
	if storageCfg.Type != ProviderType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, ProviderType, storageCfg.Type)
	}

	newConn, err := NewLocalStore(storageCfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create local store for '%s': %w", name, err)
	}

	p.connections[name] = newConn
	logger.Debugf("Created new local storage connection '%s'.", name)
	return newConn, nil
}

// decodeStorageConfig extracts the named section from the application's
// adapter configuration. The section is an interface{} tree from YAML, so
// mapstructure decodes it against the yaml tags.
func (p *LocalProvider) decodeStorageConfig(name string) (storageConfig.StorageConfig, error) {
	var storageCfg storageConfig.StorageConfig

	storageConfigMap, ok := p.cfg.Labelpress.AdapterConfigs["storage"].(map[string]interface{})
	if !ok {
		return storageCfg, fmt.Errorf("invalid 'storage' configuration format: expected map[string]interface{}")
	}
	namedConfig, ok := storageConfigMap[name]
	if !ok {
		return storageCfg, fmt.Errorf("storage configuration for name '%s' not found", name)
	}

	decoderConfig := &mapstructure.DecoderConfig{
		Result:  &storageCfg,
		TagName: "yaml",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return storageCfg, fmt.Errorf("failed to create decoder for storage config '%s': %w", name, err)
	}
	if err := decoder.Decode(namedConfig); err != nil {
		return storageCfg, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}
	return storageCfg, nil
}

// CloseAll closes all connections managed by this provider.
func (p *LocalProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result *multierror.Error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close local storage connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	if result != nil {
		return result.ErrorOrNil()
	}
	logger.Debugf("All local storage connections closed.")
	return nil
}

// Type returns the type of resource handled by this provider.
func (p *LocalProvider) Type() string {
	return ProviderType
}
