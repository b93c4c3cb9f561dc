// Package gormstorage implements the storage.Backend interface on top of any
// GORM dialect. Raids that fail to write stay queued and are retried on the
// next save and on Close.
package gormstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/raidstats/zonetracker/internal/database"
	"github.com/raidstats/zonetracker/internal/model"
	"github.com/raidstats/zonetracker/internal/model/convert"
	"github.com/raidstats/zonetracker/internal/queue"
	"github.com/raidstats/zonetracker/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultPendingLimit bounds the number of raids kept for retry.
const DefaultPendingLimit = 32

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB           *gorm.DB
	Logger       zerolog.Logger
	PendingLimit int
}

// Backend implements storage.Backend with GORM.
type Backend struct {
	db      *gorm.DB
	log     zerolog.Logger
	pending *queue.Queue[model.Raid]
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	limit := deps.PendingLimit
	if limit == 0 {
		limit = DefaultPendingLimit
	}
	return &Backend{
		db:      deps.DB,
		log:     deps.Logger,
		pending: queue.New[model.Raid](limit),
	}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return errors.New("gorm backend has no database")
	}
	return database.Migrate(b.db)
}

// Close retries queued raids once more. Raids that still fail are lost and
// reported in the returned error.
func (b *Backend) Close() error {
	if b.pending.Empty() {
		return nil
	}
	if err := b.flush(context.Background()); err != nil {
		return fmt.Errorf("%d raid(s) not written: %w", b.pending.Len(), err)
	}
	return nil
}

// SaveRaid queues the summary and writes every queued raid.
func (b *Backend) SaveRaid(ctx context.Context, summary *core.RaidSummary) error {
	if summary == nil {
		return errors.New("nil raid summary")
	}
	if dropped := b.pending.Push(convert.SummaryToRaid(summary)); dropped > 0 {
		b.log.Warn().Int("dropped", dropped).Msg("Pending raid queue full, dropped oldest")
	}
	return b.flush(ctx)
}

// Pending returns the number of raids waiting for a retry.
func (b *Backend) Pending() int {
	return b.pending.Len()
}

func (b *Backend) flush(ctx context.Context) error {
	raids := b.pending.GetAndEmpty()
	for i := range raids {
		if err := b.write(ctx, &raids[i]); err != nil {
			b.pending.Requeue(raids[i:]...)
			b.log.Error().Err(err).Str("session", raids[i].SessionID).Int("pending", len(raids)-i).
				Msg("Failed to write raid")
			return err
		}
		b.log.Debug().Str("session", raids[i].SessionID).Int("zones", len(raids[i].ZoneStats)).
			Msg("Raid written")
	}
	return nil
}

func (b *Backend) write(ctx context.Context, raid *model.Raid) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Raid{}).Where("session_id = ?", raid.SessionID).Count(&existing).Error; err != nil {
			return fmt.Errorf("checking raid %s: %w", raid.SessionID, err)
		}
		if existing > 0 {
			b.log.Warn().Str("session", raid.SessionID).Msg("Raid already stored, skipping")
			return nil
		}
		if err := tx.Create(raid).Error; err != nil {
			return fmt.Errorf("creating raid %s: %w", raid.SessionID, err)
		}
		return nil
	})
}

// LoadRaid reads a stored raid with all its zone rows.
func (b *Backend) LoadRaid(ctx context.Context, sessionID string) (model.Raid, error) {
	var raid model.Raid
	err := b.db.WithContext(ctx).
		Preload("ZoneStats.KillDetails").
		Preload("ZoneStats.LootedItems").
		Preload("Footprints").
		Where("session_id = ?", sessionID).
		First(&raid).Error
	if err != nil {
		return model.Raid{}, fmt.Errorf("loading raid %s: %w", sessionID, err)
	}
	return raid, nil
}
