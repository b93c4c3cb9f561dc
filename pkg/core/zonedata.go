package core

import (
	"slices"
	"time"
)

// RaidZoneData is the session-long aggregate of per-zone statistics.
// Zone and sub-zone GUIDs share one keyspace.
type RaidZoneData struct {
	ZonesEntered     []string                `json:"zonesEntered"`
	TimeSpent        map[string]float64      `json:"timeSpent"`
	DistanceWalked   map[string]float64      `json:"distanceWalked"`
	MedicinesUsed    map[string]int          `json:"medicinesUsed"`
	HealthHealed     map[string]float64      `json:"healthHealed"`
	DamageToPlayer   map[string]float64      `json:"damageToPlayer"`
	DamageToEnemy    map[string]float64      `json:"damageToEnemy"`
	Kills            map[string]int          `json:"kills"`
	KillDetails      map[string][]KillDetail `json:"killDetails"`
	ContainersOpened map[string]int          `json:"containersOpened"`
	ComputersOpened  map[string]int          `json:"computersOpened"`
	SafesOpened      map[string]int          `json:"safesOpened"`
	LootedItems      map[string][]LootedItem `json:"lootedItems"`
}

// NewRaidZoneData returns an empty record with every map allocated.
func NewRaidZoneData() *RaidZoneData {
	return &RaidZoneData{
		ZonesEntered:     make([]string, 0),
		TimeSpent:        make(map[string]float64),
		DistanceWalked:   make(map[string]float64),
		MedicinesUsed:    make(map[string]int),
		HealthHealed:     make(map[string]float64),
		DamageToPlayer:   make(map[string]float64),
		DamageToEnemy:    make(map[string]float64),
		Kills:            make(map[string]int),
		KillDetails:      make(map[string][]KillDetail),
		ContainersOpened: make(map[string]int),
		ComputersOpened:  make(map[string]int),
		SafesOpened:      make(map[string]int),
		LootedItems:      make(map[string][]LootedItem),
	}
}

// MetricDelta is the change of every continuously sampled metric between a
// zone entry and the matching exit.
type MetricDelta struct {
	Time           time.Duration
	Distance       float64
	MedicinesUsed  int
	HealthHealed   float64
	DamageToPlayer float64
	DamageToEnemy  float64
}

// MarkEntered records guid in ZonesEntered unless it is already there.
func (d *RaidZoneData) MarkEntered(guid string) {
	if slices.Contains(d.ZonesEntered, guid) {
		return
	}
	d.ZonesEntered = append(d.ZonesEntered, guid)
}

// Accumulate adds delta to the running totals of guid. Totals are never
// overwritten, so repeated visits add up.
func (d *RaidZoneData) Accumulate(guid string, delta MetricDelta) {
	d.TimeSpent[guid] += delta.Time.Seconds()
	d.DistanceWalked[guid] += delta.Distance
	d.MedicinesUsed[guid] += delta.MedicinesUsed
	d.HealthHealed[guid] += delta.HealthHealed
	d.DamageToPlayer[guid] += delta.DamageToPlayer
	d.DamageToEnemy[guid] += delta.DamageToEnemy
}

// AddKill counts a kill for guid and appends its detail.
func (d *RaidZoneData) AddKill(guid string, kill KillDetail) {
	d.Kills[guid]++
	d.KillDetails[guid] = append(d.KillDetails[guid], kill)
}

// AddDamageToEnemy adds inflicted damage to guid.
func (d *RaidZoneData) AddDamageToEnemy(guid string, amount float64) {
	d.DamageToEnemy[guid] += amount
}

// AddContainer counts an opened container for guid. Computers and safes are
// counted in their own maps in addition to the general container count.
func (d *RaidZoneData) AddContainer(guid string, computer, safe bool) {
	d.ContainersOpened[guid]++
	if computer {
		d.ComputersOpened[guid]++
	}
	if safe {
		d.SafesOpened[guid]++
	}
}

// AddLoot appends item to the loot list of guid. An item id already present
// in the list has its record replaced.
func (d *RaidZoneData) AddLoot(guid string, item Item) {
	list, ok := d.LootedItems[guid]
	if !ok {
		list = make([]LootedItem, 0, 1)
	}
	rec := LootedItem(item)
	if i := lootIndex(list, item.ID); i >= 0 {
		list[i] = rec
	} else {
		list = append(list, rec)
	}
	d.LootedItems[guid] = list
}

// UpdateLoot sets the amount of the matching loot record of guid.
// It reports whether a record was found.
func (d *RaidZoneData) UpdateLoot(guid string, item Item) bool {
	list := d.LootedItems[guid]
	i := lootIndex(list, item.ID)
	if i < 0 {
		return false
	}
	list[i].Amount = item.Amount
	return true
}

// RemoveLoot deletes the matching loot record of guid.
// It reports whether a record was found.
func (d *RaidZoneData) RemoveLoot(guid, itemID string) bool {
	list := d.LootedItems[guid]
	i := lootIndex(list, itemID)
	if i < 0 {
		return false
	}
	d.LootedItems[guid] = slices.Delete(list, i, i+1)
	return true
}

func lootIndex(list []LootedItem, id string) int {
	return slices.IndexFunc(list, func(l LootedItem) bool { return l.ID == id })
}

// ZoneTotals is the flattened view of every statistic for one GUID.
type ZoneTotals struct {
	GUID             string
	TimeSpent        float64
	DistanceWalked   float64
	MedicinesUsed    int
	HealthHealed     float64
	DamageToPlayer   float64
	DamageToEnemy    float64
	Kills            int
	ContainersOpened int
	ComputersOpened  int
	SafesOpened      int
	KillDetails      []KillDetail
	LootedItems      []LootedItem
}

// Totals returns the statistics recorded for guid. Missing entries read as zero.
func (d *RaidZoneData) Totals(guid string) ZoneTotals {
	return ZoneTotals{
		GUID:             guid,
		TimeSpent:        d.TimeSpent[guid],
		DistanceWalked:   d.DistanceWalked[guid],
		MedicinesUsed:    d.MedicinesUsed[guid],
		HealthHealed:     d.HealthHealed[guid],
		DamageToPlayer:   d.DamageToPlayer[guid],
		DamageToEnemy:    d.DamageToEnemy[guid],
		Kills:            d.Kills[guid],
		ContainersOpened: d.ContainersOpened[guid],
		ComputersOpened:  d.ComputersOpened[guid],
		SafesOpened:      d.SafesOpened[guid],
		KillDetails:      d.KillDetails[guid],
		LootedItems:      d.LootedItems[guid],
	}
}

// Clone returns a deep copy so the record can be handed to another goroutine.
func (d *RaidZoneData) Clone() *RaidZoneData {
	if d == nil {
		return nil
	}
	c := &RaidZoneData{
		ZonesEntered:     slices.Clone(d.ZonesEntered),
		TimeSpent:        cloneMap(d.TimeSpent),
		DistanceWalked:   cloneMap(d.DistanceWalked),
		MedicinesUsed:    cloneMap(d.MedicinesUsed),
		HealthHealed:     cloneMap(d.HealthHealed),
		DamageToPlayer:   cloneMap(d.DamageToPlayer),
		DamageToEnemy:    cloneMap(d.DamageToEnemy),
		Kills:            cloneMap(d.Kills),
		KillDetails:      make(map[string][]KillDetail, len(d.KillDetails)),
		ContainersOpened: cloneMap(d.ContainersOpened),
		ComputersOpened:  cloneMap(d.ComputersOpened),
		SafesOpened:      cloneMap(d.SafesOpened),
		LootedItems:      make(map[string][]LootedItem, len(d.LootedItems)),
	}
	for k, v := range d.KillDetails {
		c.KillDetails[k] = slices.Clone(v)
	}
	for k, v := range d.LootedItems {
		c.LootedItems[k] = slices.Clone(v)
	}
	return c
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RaidSummary is what result sinks receive at the end of a session.
type RaidSummary struct {
	SessionID string            `json:"sessionId"`
	Location  string            `json:"location"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	ZoneNames map[string]string `json:"zoneNames"`
	Zones     []Zone            `json:"-"`
	Data      *RaidZoneData     `json:"zones"`
}
