package notify

import (
	"log/slog"

	"github.com/raidstats/zonetracker/pkg/core"
)

// LogObserver writes each transition to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (l *LogObserver) OnZoneEvent(e core.ZoneEvent) {
	attrs := []any{
		"level", string(e.Level),
		"guid", e.GUID,
		"name", e.Name,
	}
	if e.ParentGUID != "" {
		attrs = append(attrs, "parent", e.ParentGUID)
	}
	switch e.Kind {
	case core.ZoneEntered:
		l.logger.Info("Zone entered", attrs...)
	default:
		l.logger.Info("Zone exited", attrs...)
	}
}
