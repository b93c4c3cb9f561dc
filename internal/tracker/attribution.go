package tracker

import (
	"github.com/raidstats/zonetracker/pkg/core"
)

// activeGUID is where discrete events land: the sub-zone when one is
// active, otherwise the zone.
func (t *Tracker) activeGUID() (string, bool) {
	if !t.enabled {
		return "", false
	}
	if t.currentSubZone != nil {
		return t.currentSubZone.GUID, true
	}
	if t.currentZone != nil {
		return t.currentZone.GUID, true
	}
	return "", false
}

// ReportDamageDealt adds inflicted damage to the active zone.
func (t *Tracker) ReportDamageDealt(damage core.DamageInfo) {
	guid, ok := t.activeGUID()
	if !ok {
		return
	}
	if damage.Amount != 0 {
		t.directDamage = true
		t.warnMixedDamage()
	}
	t.data.AddDamageToEnemy(guid, damage.Amount)
}

// warnMixedDamage logs once per session when damage to enemies arrives both
// from the host counter and from damage reports. Both are summed.
func (t *Tracker) warnMixedDamage() {
	if !t.directDamage || !t.counterDamage || t.mixedDamageWarned {
		return
	}
	t.mixedDamageWarned = true
	t.logger.Warn("Damage to enemies reported by both counter and damage events; totals include both",
		"location", t.location)
}

// ReportKill counts a kill in the active zone.
func (t *Tracker) ReportKill(damage core.DamageInfo, role string, distance float64, bodyPart string) {
	guid, ok := t.activeGUID()
	if !ok {
		return
	}
	t.data.AddKill(guid, core.KillDetail{
		Weapon:   damage.Weapon,
		Distance: distance,
		Role:     role,
		BodyPart: bodyPart,
	})
}

func (t *Tracker) ReportItemAdded(item core.Item) {
	guid, ok := t.activeGUID()
	if !ok {
		return
	}
	t.data.AddLoot(guid, item)
}

func (t *Tracker) ReportItemUpdated(item core.Item) {
	guid, ok := t.activeGUID()
	if !ok {
		return
	}
	if !t.data.UpdateLoot(guid, item) {
		t.logger.Debug("Loot update for unknown item", "zone", guid, "item", item.ID)
	}
}

func (t *Tracker) ReportItemRemoved(item core.Item) {
	guid, ok := t.activeGUID()
	if !ok {
		return
	}
	if !t.data.RemoveLoot(guid, item.ID) {
		t.logger.Debug("Loot removal for unknown item", "zone", guid, "item", item.ID)
	}
}

// ReportContainerOpened counts each container owner once per session.
// Containers opened outside any zone are not remembered.
func (t *Tracker) ReportContainerOpened(container core.Container) {
	guid, ok := t.activeGUID()
	if !ok {
		return
	}
	if !t.containers.MarkOpened(container.OwnerID) {
		return
	}
	t.data.AddContainer(guid, t.computers.Has(container.TemplateID), t.safes.Has(container.TemplateID))
}
