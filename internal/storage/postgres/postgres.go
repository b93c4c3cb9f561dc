// Package pgstorage implements the storage.Backend interface with PostgreSQL.
// When Postgres is unreachable at startup it falls back to an in-memory
// SQLite database that is dumped to FallbackPath on Close.
package pgstorage

import (
	"context"
	"errors"

	"github.com/raidstats/zonetracker/internal/database"
	gormstorage "github.com/raidstats/zonetracker/internal/storage/gorm"
	"github.com/raidstats/zonetracker/pkg/core"
	"github.com/rs/zerolog"
)

// Config holds configuration for the Postgres storage backend.
type Config struct {
	FallbackPath string // local SQLite dump used when Postgres is down, optional
}

// Backend wraps the GORM backend for Postgres.
type Backend struct {
	cfg  Config
	log  zerolog.Logger
	db   *database.Manager
	gorm *gormstorage.Backend
}

// New creates a new Postgres storage backend. Connection settings come from
// the db.* configuration keys when Init runs.
func New(cfg Config, log zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: log,
		db:  database.NewManager(log),
	}
}

// Init connects, falling back to local SQLite when configured, and migrates.
func (b *Backend) Init() error {
	if err := b.db.ConnectPostgres(b.cfg.FallbackPath); err != nil {
		return err
	}
	b.gorm = gormstorage.New(gormstorage.Dependencies{DB: b.db.DB, Logger: b.log})
	return b.gorm.Init()
}

// Local reports whether raids are going to the SQLite fallback.
func (b *Backend) Local() bool {
	return b.db.ShouldSaveLocal
}

// SaveRaid writes the summary through the GORM backend.
func (b *Backend) SaveRaid(ctx context.Context, summary *core.RaidSummary) error {
	if b.gorm == nil {
		return errors.New("postgres backend not initialized")
	}
	return b.gorm.SaveRaid(ctx, summary)
}

// Close flushes pending raids, dumps a fallback database and disconnects.
func (b *Backend) Close() error {
	var errs []error
	if b.gorm != nil {
		errs = append(errs, b.gorm.Close())
	}
	errs = append(errs, b.db.Close())
	return errors.Join(errs...)
}
