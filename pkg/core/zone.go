package core

// NilGUID is the all-zero GUID. Zones carrying it are treated as unassigned.
const NilGUID = "00000000-0000-0000-0000-000000000000"

// Zone is an axis-aligned volume, rotated about the vertical axis by Yaw
// degrees, with an optional single level of child zones.
type Zone struct {
	GUID     string     `json:"guid" yaml:"guid"`
	Name     string     `json:"name" yaml:"name"`
	Center   Position3D `json:"center" yaml:"center"`
	Size     Position3D `json:"size" yaml:"size"`
	Yaw      float64    `json:"yaw" yaml:"yaw"`
	SubZones []Zone     `json:"subZones,omitempty" yaml:"subZones,omitempty"`
}

// HasGUID reports whether the zone carries an assigned identifier.
func (z Zone) HasGUID() bool {
	return z.GUID != "" && z.GUID != NilGUID
}

// Catalog maps a location name to its ordered top-level zones.
type Catalog map[string][]Zone

// Zones returns the zones for location, or nil when the location is unknown.
func (c Catalog) Zones(location string) []Zone {
	if c == nil {
		return nil
	}
	return c[location]
}

// Names returns a GUID -> display name index over every zone and sub-zone
// of the location.
func (c Catalog) Names(location string) map[string]string {
	names := make(map[string]string)
	for _, z := range c.Zones(location) {
		names[z.GUID] = z.Name
		for _, s := range z.SubZones {
			names[s.GUID] = s.Name
		}
	}
	return names
}
