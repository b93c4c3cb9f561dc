package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/raidstats/zonetracker/internal/dispatcher"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/tracker"
	"github.com/raidstats/zonetracker/internal/worker"
	"github.com/raidstats/zonetracker/pkg/core"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Tracker    *tracker.Tracker
	Session    *session.Context
	Dispatcher *dispatcher.Dispatcher                        // optional
	Exports    interface{ ExportStats() worker.ExportStats } // optional
	Clock      session.Clock                                 // optional
	StatusPath string                                        // status file rewritten on every Report, optional
}

// ZoneRef names a zone in a status snapshot.
type ZoneRef struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// Status is a point-in-time view of the tracker and its plumbing.
type Status struct {
	Time         time.Time           `json:"time"`
	Enabled      bool                `json:"enabled"`
	SessionID    string              `json:"sessionId,omitempty"`
	Location     string              `json:"location"`
	State        string              `json:"state"`
	Zone         *ZoneRef            `json:"zone,omitempty"`
	SubZone      *ZoneRef            `json:"subZone,omitempty"`
	ZonesEntered []string            `json:"zonesEntered"`
	Dispatcher   *dispatcher.Stats   `json:"dispatcher,omitempty"`
	Exports      *worker.ExportStats `json:"exports,omitempty"`
}

// Service reports program status. It reads the tracker, so Status and Report
// must run on the tracker goroutine.
type Service struct {
	deps Dependencies
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Clock == nil {
		deps.Clock = session.SystemClock{}
	}
	return &Service{deps: deps}
}

func zoneRef(z *core.Zone) *ZoneRef {
	if z == nil {
		return nil
	}
	return &ZoneRef{GUID: z.GUID, Name: z.Name}
}

// Status returns the current program status
func (s *Service) Status() Status {
	t := s.deps.Tracker
	st := Status{
		Time:         s.deps.Clock.Now(),
		Enabled:      t.Enabled(),
		Location:     t.Location(),
		State:        t.State().String(),
		Zone:         zoneRef(t.CurrentZone()),
		SubZone:      zoneRef(t.CurrentSubZone()),
		ZonesEntered: append([]string(nil), t.Data().ZonesEntered...),
	}
	if s.deps.Session != nil && s.deps.Session.Active() {
		st.SessionID = s.deps.Session.ID()
	}
	if s.deps.Dispatcher != nil {
		ds := s.deps.Dispatcher.Stats()
		st.Dispatcher = &ds
	}
	if s.deps.Exports != nil {
		es := s.deps.Exports.ExportStats()
		st.Exports = &es
	}
	return st
}

// Report renders Status as indented JSON and, when StatusPath is set,
// rewrites the status file with it.
func (s *Service) Report() (string, error) {
	raw, err := json.MarshalIndent(s.Status(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding status: %w", err)
	}
	if s.deps.StatusPath != "" {
		if err := os.WriteFile(s.deps.StatusPath, append(raw, '\n'), 0644); err != nil {
			return string(raw), fmt.Errorf("writing status file: %w", err)
		}
	}
	return string(raw), nil
}
