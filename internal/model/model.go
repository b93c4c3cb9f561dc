package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is the list of all structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Raid{},
	&ZoneStat{},
	&ZoneKill{},
	&ZoneLoot{},
	&ZoneFootprint{},
}

////////////////////////
// RAID MODELS
////////////////////////

// Raid is one tracked session on a location
type Raid struct {
	gorm.Model
	SessionID    string          `json:"sessionId" gorm:"size:36;uniqueIndex"`
	Location     string          `json:"location" gorm:"size:127;index:idx_raid_location"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      time.Time       `json:"endTime"`
	ZonesEntered datatypes.JSON  `json:"zonesEntered"`
	ZoneStats    []ZoneStat      `json:"zoneStats" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Footprints   []ZoneFootprint `json:"footprints" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Raid) TableName() string {
	return "raids"
}

// ZoneStat holds the totals of a single zone or sub-zone for one raid
type ZoneStat struct {
	gorm.Model
	RaidID           uint       `json:"raidId" gorm:"index:idx_zonestat_raid_id"`
	ZoneGUID         string     `json:"zoneGuid" gorm:"size:36;index:idx_zonestat_zone_guid"`
	ZoneName         string     `json:"zoneName" gorm:"size:127"`
	ParentGUID       string     `json:"parentGuid" gorm:"size:36"`
	Level            string     `json:"level" gorm:"size:16"`
	TimeSpent        float64    `json:"timeSpent"`
	DistanceWalked   float64    `json:"distanceWalked"`
	MedicinesUsed    int        `json:"medicinesUsed"`
	HealthHealed     float64    `json:"healthHealed"`
	DamageToPlayer   float64    `json:"damageToPlayer"`
	DamageToEnemy    float64    `json:"damageToEnemy"`
	Kills            int        `json:"kills"`
	ContainersOpened int        `json:"containersOpened"`
	ComputersOpened  int        `json:"computersOpened"`
	SafesOpened      int        `json:"safesOpened"`
	KillDetails      []ZoneKill `json:"killDetails" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	LootedItems      []ZoneLoot `json:"lootedItems" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*ZoneStat) TableName() string {
	return "zone_stats"
}

// ZoneKill is one itemized kill inside a zone
type ZoneKill struct {
	ID         uint    `json:"id" gorm:"primarykey"`
	ZoneStatID uint    `json:"zoneStatId" gorm:"index:idx_zonekill_zonestat_id"`
	Weapon     string  `json:"weapon" gorm:"size:127"`
	Distance   float64 `json:"distance"`
	Role       string  `json:"role" gorm:"size:64"`
	BodyPart   string  `json:"bodyPart" gorm:"size:64"`
}

func (*ZoneKill) TableName() string {
	return "zone_kills"
}

// ZoneLoot is an item still held at raid end that was picked up in a zone
type ZoneLoot struct {
	ID         uint   `json:"id" gorm:"primarykey"`
	ZoneStatID uint   `json:"zoneStatId" gorm:"index:idx_zoneloot_zonestat_id"`
	ItemID     string `json:"itemId" gorm:"size:64"`
	TemplateID string `json:"templateId" gorm:"size:64"`
	Amount     int    `json:"amount"`
	Color      string `json:"color" gorm:"size:32"`
}

func (*ZoneLoot) TableName() string {
	return "zone_loot"
}

// ZoneFootprint stores the horizontal outline of a zone as WKT, with the
// vertical extent alongside
type ZoneFootprint struct {
	ID         uint    `json:"id" gorm:"primarykey"`
	RaidID     uint    `json:"raidId" gorm:"index:idx_zonefootprint_raid_id"`
	ZoneGUID   string  `json:"zoneGuid" gorm:"size:36"`
	ParentGUID string  `json:"parentGuid" gorm:"size:36"`
	Polygon    string  `json:"polygon" gorm:"type:text"`
	MinY       float64 `json:"minY"`
	MaxY       float64 `json:"maxY"`
}

func (*ZoneFootprint) TableName() string {
	return "zone_footprints"
}
