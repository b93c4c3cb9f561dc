// Package convert turns raid summaries into GORM models
package convert

import (
	"encoding/json"
	"sort"

	"github.com/raidstats/zonetracker/internal/geo"
	"github.com/raidstats/zonetracker/internal/model"
	"github.com/raidstats/zonetracker/pkg/core"
	"gorm.io/datatypes"
)

// zoneRef locates a zone of the catalog tree by GUID.
type zoneRef struct {
	zone   *core.Zone
	parent string
}

func indexZones(zones []core.Zone) map[string]zoneRef {
	idx := make(map[string]zoneRef)
	for i := range zones {
		z := &zones[i]
		idx[z.GUID] = zoneRef{zone: z}
		for j := range z.SubZones {
			idx[z.SubZones[j].GUID] = zoneRef{zone: &z.SubZones[j], parent: z.GUID}
		}
	}
	return idx
}

// stringsToJSON converts a []string to datatypes.JSON for DB storage.
func stringsToJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

// StatGUIDs returns every GUID with recorded statistics: entered zones in
// entry order, then any other keyed GUID sorted.
func StatGUIDs(d *core.RaidZoneData) []string {
	seen := make(map[string]bool, len(d.ZonesEntered))
	out := make([]string, 0, len(d.ZonesEntered))
	for _, g := range d.ZonesEntered {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}

	var extra []string
	collect := func(keys []string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	collect(keysOf(d.TimeSpent))
	collect(keysOf(d.DamageToEnemy))
	collect(keysOf(d.Kills))
	collect(keysOf(d.ContainersOpened))
	collect(keysOf(d.LootedItems))
	sort.Strings(extra)

	return append(out, extra...)
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// TotalsToZoneStat converts one GUID's totals to a GORM model.ZoneStat.
// name and parent come from the catalog and may be empty.
func TotalsToZoneStat(t core.ZoneTotals, name, parent string) model.ZoneStat {
	level := core.LevelZone
	if parent != "" {
		level = core.LevelSubZone
	}

	stat := model.ZoneStat{
		ZoneGUID:         t.GUID,
		ZoneName:         name,
		ParentGUID:       parent,
		Level:            string(level),
		TimeSpent:        t.TimeSpent,
		DistanceWalked:   t.DistanceWalked,
		MedicinesUsed:    t.MedicinesUsed,
		HealthHealed:     t.HealthHealed,
		DamageToPlayer:   t.DamageToPlayer,
		DamageToEnemy:    t.DamageToEnemy,
		Kills:            t.Kills,
		ContainersOpened: t.ContainersOpened,
		ComputersOpened:  t.ComputersOpened,
		SafesOpened:      t.SafesOpened,
	}

	for _, k := range t.KillDetails {
		stat.KillDetails = append(stat.KillDetails, model.ZoneKill{
			Weapon:   k.Weapon,
			Distance: k.Distance,
			Role:     k.Role,
			BodyPart: k.BodyPart,
		})
	}
	for _, l := range t.LootedItems {
		stat.LootedItems = append(stat.LootedItems, model.ZoneLoot{
			ItemID:     l.ID,
			TemplateID: l.TemplateID,
			Amount:     l.Amount,
			Color:      l.Color,
		})
	}
	return stat
}

// ZoneToFootprint converts a catalog zone to a GORM model.ZoneFootprint.
func ZoneToFootprint(z *core.Zone, parent string) model.ZoneFootprint {
	return model.ZoneFootprint{
		ZoneGUID:   z.GUID,
		ParentGUID: parent,
		Polygon:    geo.FootprintWKT(z),
		MinY:       z.Center.Y - z.Size.Y/2,
		MaxY:       z.Center.Y + z.Size.Y/2,
	}
}

// SummaryToRaid converts a raid summary into a model.Raid with its zone
// statistics and the footprints of every zone that has statistics.
func SummaryToRaid(s *core.RaidSummary) model.Raid {
	raid := model.Raid{
		SessionID: s.SessionID,
		Location:  s.Location,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
	if s.Data == nil {
		raid.ZonesEntered = stringsToJSON(nil)
		return raid
	}
	raid.ZonesEntered = stringsToJSON(s.Data.ZonesEntered)

	idx := indexZones(s.Zones)
	for _, guid := range StatGUIDs(s.Data) {
		ref, known := idx[guid]
		name := s.ZoneNames[guid]
		if name == "" && known {
			name = ref.zone.Name
		}
		raid.ZoneStats = append(raid.ZoneStats, TotalsToZoneStat(s.Data.Totals(guid), name, ref.parent))
		if known {
			raid.Footprints = append(raid.Footprints, ZoneToFootprint(ref.zone, ref.parent))
		}
	}
	return raid
}
