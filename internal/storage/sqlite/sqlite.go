// Package sqlitestorage implements the storage.Backend interface with a SQLite
// file. It wraps the GORM backend; the only SQLite-specific concern is
// opening the database file.
package sqlitestorage

import (
	"context"
	"errors"

	"github.com/raidstats/zonetracker/internal/config"
	"github.com/raidstats/zonetracker/internal/database"
	gormstorage "github.com/raidstats/zonetracker/internal/storage/gorm"
	"github.com/raidstats/zonetracker/pkg/core"
	"github.com/rs/zerolog"
)

// Backend wraps the GORM backend for SQLite.
type Backend struct {
	cfg  config.SQLiteConfig
	log  zerolog.Logger
	db   *database.Manager
	gorm *gormstorage.Backend
}

// New creates a new SQLite storage backend. The database is opened by Init.
func New(cfg config.SQLiteConfig, log zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: log,
		db:  database.NewManager(log),
	}
}

// Init opens the database file and migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.ConnectSqlite(b.cfg.Path); err != nil {
		return err
	}
	b.gorm = gormstorage.New(gormstorage.Dependencies{DB: b.db.DB, Logger: b.log})
	return b.gorm.Init()
}

// SaveRaid writes the summary through the GORM backend.
func (b *Backend) SaveRaid(ctx context.Context, summary *core.RaidSummary) error {
	if b.gorm == nil {
		return errors.New("sqlite backend not initialized")
	}
	return b.gorm.SaveRaid(ctx, summary)
}

// Store exposes the underlying GORM backend for reads.
func (b *Backend) Store() *gormstorage.Backend {
	return b.gorm
}

// Close flushes pending raids and closes the database.
func (b *Backend) Close() error {
	var errs []error
	if b.gorm != nil {
		errs = append(errs, b.gorm.Close())
	}
	errs = append(errs, b.db.Close())
	return errors.Join(errs...)
}
