package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/raidstats/zonetracker/internal/counters"
	"github.com/raidstats/zonetracker/internal/parser"
	"github.com/raidstats/zonetracker/internal/queue"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/storage"
	"github.com/raidstats/zonetracker/internal/tracker"
	"github.com/raidstats/zonetracker/pkg/core"
)

// ErrNoSession is returned for session-scoped commands received outside a session.
var ErrNoSession = errors.New("no active session")

// DefaultExportTimeout bounds a single SaveRaid call.
const DefaultExportTimeout = 30 * time.Second

// ParserService converts raw command arguments into domain values.
type ParserService interface {
	ParseSessionStart(data []string) (string, error)
	ParsePosition(data []string) (parser.ParsedPosition, error)
	ParseCounters(data []string) (counters.Values, error)
	ParseDamage(data []string) (core.DamageInfo, error)
	ParseKill(data []string) (parser.ParsedKill, error)
	ParseItem(data []string) (core.Item, error)
	ParseItemRemoved(data []string) (core.Item, error)
	ParseContainer(data []string) (core.Container, error)
}

// StatusReporter renders the :STATUS: reply.
type StatusReporter interface {
	Report() (string, error)
}

// Flusher is flushed after every export so the session's logs are complete.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Uploader sends a written export file to the web frontend.
type Uploader interface {
	Upload(filePath string, meta storage.UploadMetadata) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Tracker  *tracker.Tracker
	Counters *counters.Session
	Session  *session.Context
	Clock    session.Clock
	Parser   ParserService
	Catalog  core.Catalog
	Logger   *slog.Logger

	Status        StatusReporter // optional
	Flusher       Flusher        // optional
	Uploader      Uploader       // optional, needs a backend that writes export files
	UploadTag     string
	ExportTimeout time.Duration
}

// Manager turns dispatcher events into tracker calls and exports finished
// sessions to the storage backend.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
	exports *queue.Queue[*core.RaidSummary]

	exported    atomic.Int64
	exportFails atomic.Int64
	uploaded    atomic.Int64
	uploadFails atomic.Int64
	dispatch    func(command string) error
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Clock == nil {
		deps.Clock = session.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.ExportTimeout <= 0 {
		deps.ExportTimeout = DefaultExportTimeout
	}
	return &Manager{
		deps:    deps,
		backend: backend,
		exports: queue.New[*core.RaidSummary](0),
	}
}

// SetStatus installs the :STATUS: reporter. Call it before RegisterHandlers.
func (m *Manager) SetStatus(s StatusReporter) {
	m.deps.Status = s
}

// ExportStats reports how many raids were saved or failed, and how many wait.
type ExportStats struct {
	Exported      int64 `json:"exported"`
	Failed        int64 `json:"failed"`
	Pending       int   `json:"pending"`
	Uploaded      int64 `json:"uploaded"`
	UploadsFailed int64 `json:"uploadsFailed"`
}

// ExportStats returns the export counters.
func (m *Manager) ExportStats() ExportStats {
	return ExportStats{
		Exported:      m.exported.Load(),
		Failed:        m.exportFails.Load(),
		Pending:       m.exports.Len(),
		Uploaded:      m.uploaded.Load(),
		UploadsFailed: m.uploadFails.Load(),
	}
}
