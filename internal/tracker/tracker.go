// Package tracker classifies position samples against the zone catalog of
// the current location and accumulates per-zone statistics for the session.
//
// A Tracker is confined to one goroutine: every method must be called from
// the goroutine that drives the session. It holds no locks.
package tracker

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/raidstats/zonetracker/internal/cache"
	"github.com/raidstats/zonetracker/internal/notify"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/pkg/core"
)

// State is the tracker's position in the zone hierarchy.
type State int

const (
	NoZone State = iota
	InZone
	InZoneAndSubZone
)

func (s State) String() string {
	switch s {
	case InZone:
		return "InZone"
	case InZoneAndSubZone:
		return "InZoneAndSubZone"
	default:
		return "NoZone"
	}
}

// Dependencies holds the collaborators injected at construction.
type Dependencies struct {
	Counters SessionCounterReader
	Clock    session.Clock
	Logger   *slog.Logger
	Hub      *notify.Hub

	ComputerTemplates cache.TemplateSet
	SafeTemplates     cache.TemplateSet
}

// Tracker owns the session state and the aggregate record.
type Tracker struct {
	counters  SessionCounterReader
	clock     session.Clock
	logger    *slog.Logger
	hub       *notify.Hub
	computers cache.TemplateSet
	safes     cache.TemplateSet

	enabled  bool
	location string
	zones    []core.Zone

	currentZone    *core.Zone
	currentSubZone *core.Zone
	zoneBase       baseline
	subZoneBase    baseline

	data       *core.RaidZoneData
	containers *cache.OpenedContainers

	// damage-to-enemy sources seen this session
	directDamage      bool
	counterDamage     bool
	mixedDamageWarned bool

	transitions metric.Int64Counter
}

// New creates a disabled Tracker. Missing clock, logger or counters fall back
// to the system clock, the default logger and all-zero counters.
func New(deps Dependencies) (*Tracker, error) {
	t := &Tracker{
		counters:   deps.Counters,
		clock:      deps.Clock,
		logger:     deps.Logger,
		hub:        deps.Hub,
		computers:  deps.ComputerTemplates,
		safes:      deps.SafeTemplates,
		data:       core.NewRaidZoneData(),
		containers: cache.NewOpenedContainers(),
	}
	if t.counters == nil {
		t.counters = zeroCounters{}
	}
	if t.clock == nil {
		t.clock = session.SystemClock{}
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}

	var err error
	t.transitions, err = meter().Int64Counter(
		"tracker.zone.transitions",
		metric.WithDescription("Zone and sub-zone entries and exits"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transitions counter: %w", err)
	}
	return t, nil
}

// Enable starts a new session at location. Any previous session state and
// aggregate record are discarded. A location without zones leaves tracking
// idle for the whole session.
func (t *Tracker) Enable(catalog core.Catalog, location string) {
	t.location = location
	t.zones = catalog.Zones(location)
	t.currentZone = nil
	t.currentSubZone = nil
	t.zoneBase = baseline{}
	t.subZoneBase = baseline{}
	t.data = core.NewRaidZoneData()
	t.containers.Reset()
	t.directDamage = false
	t.counterDamage = false
	t.mixedDamageWarned = false
	t.enabled = true

	if len(t.zones) == 0 {
		t.logger.Warn("No zones configured for location", "location", location)
		return
	}
	t.logger.Debug("Zone tracking enabled", "location", location, "zones", len(t.zones))
}

// Disable closes any open sub-zone and zone so their trailing deltas are
// recorded, then stops tracking. The record stays readable until the next
// Enable. Calling Disable again is a no-op.
func (t *Tracker) Disable() {
	if !t.enabled {
		return
	}
	t.exitZone()
	t.enabled = false
	t.logger.Debug("Zone tracking disabled", "location", t.location, "zonesEntered", len(t.data.ZonesEntered))
}

// ReportPosition feeds one position sample.
func (t *Tracker) ReportPosition(p core.Position3D) {
	if !t.enabled || len(t.zones) == 0 {
		return
	}
	t.transition(p)
}

// Data returns the live aggregate record. Callers on other goroutines must
// use Data().Clone() taken on the tracker goroutine.
func (t *Tracker) Data() *core.RaidZoneData {
	return t.data
}

func (t *Tracker) State() State {
	switch {
	case t.currentSubZone != nil:
		return InZoneAndSubZone
	case t.currentZone != nil:
		return InZone
	default:
		return NoZone
	}
}

func (t *Tracker) Enabled() bool {
	return t.enabled
}

func (t *Tracker) Location() string {
	return t.location
}

// Zones returns the zones of the current location.
func (t *Tracker) Zones() []core.Zone {
	return t.zones
}

// CurrentZone returns the active zone, or nil.
func (t *Tracker) CurrentZone() *core.Zone {
	return t.currentZone
}

// CurrentSubZone returns the active sub-zone, or nil.
func (t *Tracker) CurrentSubZone() *core.Zone {
	return t.currentSubZone
}
