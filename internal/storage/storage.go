package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/raidstats/zonetracker/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Backend is the interface all raid result sinks must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveRaid persists the statistics of one finished session. The summary
	// is owned by the caller and must not be modified.
	SaveRaid(ctx context.Context, summary *core.RaidSummary) error
}

// Exporter is an optional interface for backends that write one file per raid.
type Exporter interface {
	LastExportPath() string
}

// UploadMetadata describes an export file sent to the web frontend.
type UploadMetadata struct {
	Location     string
	SessionID    string
	RaidDuration float64 // seconds
	ZonesEntered int
	Tag          string
}

// Fanout saves each raid to several backends concurrently.
type Fanout struct {
	backends []Backend
}

// NewFanout combines backends. Nil entries are skipped.
func NewFanout(backends ...Backend) *Fanout {
	f := &Fanout{}
	for _, b := range backends {
		if b != nil {
			f.backends = append(f.backends, b)
		}
	}
	return f
}

// Backends returns the combined backends in registration order.
func (f *Fanout) Backends() []Backend {
	return f.backends
}

// LastExportPath returns the path of the first backend that writes export
// files, or "" when none does.
func (f *Fanout) LastExportPath() string {
	for _, b := range f.backends {
		if e, ok := b.(Exporter); ok {
			return e.LastExportPath()
		}
	}
	return ""
}

// Init initializes every backend in order and stops at the first failure.
func (f *Fanout) Init() error {
	for _, b := range f.backends {
		if err := b.Init(); err != nil {
			return fmt.Errorf("init %T: %w", b, err)
		}
	}
	return nil
}

// Close closes every backend and joins their errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, b := range f.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", b, err))
		}
	}
	return errors.Join(errs...)
}

// SaveRaid hands the summary to every backend at once. A failing backend does
// not stop the others; all failures are joined.
func (f *Fanout) SaveRaid(ctx context.Context, summary *core.RaidSummary) error {
	errs := make([]error, len(f.backends))

	var g errgroup.Group
	for i, b := range f.backends {
		g.Go(func() error {
			if err := b.SaveRaid(ctx, summary); err != nil {
				errs[i] = fmt.Errorf("save raid to %T: %w", b, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
