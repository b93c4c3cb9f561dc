package tracker

import (
	"time"

	"github.com/raidstats/zonetracker/pkg/core"
)

// baseline is the counter snapshot taken when a level is entered.
type baseline struct {
	entered        bool
	time           time.Time
	distance       float64
	medicinesUsed  int
	healthHealed   float64
	damageToPlayer float64
	damageToEnemy  float64
}

func (t *Tracker) snapshot() baseline {
	return baseline{
		entered:        true,
		time:           t.clock.Now(),
		distance:       t.counters.DistanceWalked(),
		medicinesUsed:  t.counters.MedicinesUsed(),
		healthHealed:   t.counters.HealthHealed(),
		damageToPlayer: t.counters.DamageToPlayer(),
		damageToEnemy:  t.counters.DamageToEnemy(),
	}
}

// deltaTo is the change from b to now. Deltas are not clamped.
func (b baseline) deltaTo(now baseline) core.MetricDelta {
	return core.MetricDelta{
		Time:           now.time.Sub(b.time),
		Distance:       now.distance - b.distance,
		MedicinesUsed:  now.medicinesUsed - b.medicinesUsed,
		HealthHealed:   now.healthHealed - b.healthHealed,
		DamageToPlayer: now.damageToPlayer - b.damageToPlayer,
		DamageToEnemy:  now.damageToEnemy - b.damageToEnemy,
	}
}

// flush adds the delta since base to the totals of zone and clears base.
// An unentered base is left untouched.
func (t *Tracker) flush(zone *core.Zone, base *baseline) {
	if !base.entered || zone == nil {
		return
	}
	delta := base.deltaTo(t.snapshot())
	if delta.DamageToEnemy != 0 {
		t.counterDamage = true
		t.warnMixedDamage()
	}
	t.data.Accumulate(zone.GUID, delta)
	*base = baseline{}
}
