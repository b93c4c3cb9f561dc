package core

import "time"

// DamageInfo describes a single damage application from a gameplay hook.
type DamageInfo struct {
	Weapon string  `json:"weapon"`
	Amount float64 `json:"amount"`
}

// KillDetail is one itemized kill attributed to a zone.
type KillDetail struct {
	Weapon   string  `json:"weapon"`
	Distance float64 `json:"distance"`
	Role     string  `json:"role"`
	BodyPart string  `json:"bodyPart"`
}

// Item is an inventory item as seen by the loot hooks.
type Item struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	Amount     int    `json:"amount"`
	Color      string `json:"color,omitempty"`
}

// LootedItem is the per-zone record of an item picked up in that zone.
type LootedItem struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	Amount     int    `json:"amount"`
	Color      string `json:"color,omitempty"`
}

// Container is a lootable container that was opened.
// OwnerID identifies the container instance, TemplateID its kind.
type Container struct {
	OwnerID    string `json:"ownerId"`
	TemplateID string `json:"templateId"`
}

// ZoneEventKind says whether a zone was entered or left.
type ZoneEventKind string

const (
	ZoneEntered ZoneEventKind = "entered"
	ZoneExited  ZoneEventKind = "exited"
)

// ZoneLevel distinguishes top-level zones from sub-zones.
type ZoneLevel string

const (
	LevelZone    ZoneLevel = "zone"
	LevelSubZone ZoneLevel = "subzone"
)

// ZoneEvent is published on every zone or sub-zone transition.
type ZoneEvent struct {
	Kind       ZoneEventKind `json:"kind"`
	Level      ZoneLevel     `json:"level"`
	GUID       string        `json:"guid"`
	Name       string        `json:"name"`
	ParentGUID string        `json:"parentGuid,omitempty"`
	Time       time.Time     `json:"time"`
}
