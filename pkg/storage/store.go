// Package storage persists chart snapshots in named slots.
//
// A slot is an opaque byte blob under a key; the snapshot package decides
// what goes in it. Backends:
//   - memory: process-local map, for tests and --ephemeral runs
//   - file: one JSON file per slot under ~/.config/orgchart/slots
//   - sqlite: a single database file, one row per slot
//   - redis: one string key per slot, for shared deployments of the API
//   - mongo: one document per slot
//
// Open picks the backend from a [Config]:
//
//	store, err := storage.Open(ctx, storage.Config{Backend: storage.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	data, ok, err := store.Get(ctx, storage.DefaultSlot)
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSlot is the slot the editor reads and writes unless told otherwise.
const DefaultSlot = "org-chart"

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Lister is implemented by stores that can enumerate their slots. Every
// backend in this package does.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Backends lists the supported backend names.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendMongo}

// Store is a key-value store for snapshot slots. A missing key is reported
// as ok == false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Name returns the backend name, used as a metrics label.
	Name() string
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	SQLite  string      `toml:"sqlite_path"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// DefaultDir returns the directory holding file slots and the default
// sqlite database: $XDG_CONFIG_HOME/orgchart or ~/.config/orgchart.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "orgchart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "orgchart"), nil
}

// Open creates the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			base, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "slots")
		}
		return NewFileStore(dir)
	case BackendSQLite:
		path := cfg.SQLite
		if path == "" {
			base, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(base, "orgchart.db")
		}
		return NewSQLiteStore(ctx, path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
