package tracker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/raidstats/zonetracker/internal/geo"
	"github.com/raidstats/zonetracker/pkg/core"
)

func (t *Tracker) transition(p core.Position3D) {
	zone, ok := geo.FindContaining(p, t.zones)
	if !ok {
		t.exitZone()
		return
	}

	if zone != t.currentZone {
		t.exitZone()
		t.enterZone(zone)
	}

	sub, _ := geo.FindContaining(p, zone.SubZones)
	if sub != t.currentSubZone {
		t.exitSubZone()
		if sub != nil {
			t.enterSubZone(sub)
		}
	}
}

func (t *Tracker) enterZone(zone *core.Zone) {
	t.currentZone = zone
	t.zoneBase = t.snapshot()
	t.data.MarkEntered(zone.GUID)
	t.publish(core.ZoneEntered, core.LevelZone, zone, "")
}

func (t *Tracker) enterSubZone(sub *core.Zone) {
	t.currentSubZone = sub
	t.subZoneBase = t.snapshot()
	t.data.MarkEntered(sub.GUID)
	t.publish(core.ZoneEntered, core.LevelSubZone, sub, t.currentZone.GUID)
}

// exitZone closes the active sub-zone first, then the zone.
func (t *Tracker) exitZone() {
	t.exitSubZone()
	if t.currentZone == nil {
		return
	}
	zone := t.currentZone
	t.flush(zone, &t.zoneBase)
	t.currentZone = nil
	t.publish(core.ZoneExited, core.LevelZone, zone, "")
}

func (t *Tracker) exitSubZone() {
	if t.currentSubZone == nil {
		return
	}
	sub := t.currentSubZone
	t.flush(sub, &t.subZoneBase)
	t.currentSubZone = nil
	var parent string
	if t.currentZone != nil {
		parent = t.currentZone.GUID
	}
	t.publish(core.ZoneExited, core.LevelSubZone, sub, parent)
}

func (t *Tracker) publish(kind core.ZoneEventKind, level core.ZoneLevel, zone *core.Zone, parent string) {
	t.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("level", string(level)),
		attribute.String("kind", string(kind)),
	))
	t.hub.Publish(core.ZoneEvent{
		Kind:       kind,
		Level:      level,
		GUID:       zone.GUID,
		Name:       zone.Name,
		ParentGUID: parent,
		Time:       t.clock.Now(),
	})
}
