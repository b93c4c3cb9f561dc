package storage

import (
	"fmt"

	"github.com/raidstats/zonetracker/internal/config"
	"github.com/raidstats/zonetracker/internal/storage/memory"
	pgstorage "github.com/raidstats/zonetracker/internal/storage/postgres"
	sqlitestorage "github.com/raidstats/zonetracker/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return pgstorage.New(pgstorage.Config{FallbackPath: cfg.SQLite.Path}, log), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, log), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
