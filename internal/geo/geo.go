package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/raidstats/zonetracker/pkg/core"
)

// Zone volumes are boxes of Size centered at Center, rotated by Yaw degrees
// about the vertical (Y) axis. Containment is tested in the zone's local frame:
// the query point is rotated by -Yaw about the center, then checked against
// center ± size/2 per axis. Boundaries are inclusive.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses a "x,y,z" string into a core.Position3D.
// A missing third component is read as zero.
func Position3DFromString(coords string) (core.Position3D, error) {
	coordsSplit := strings.Split(strings.Trim(coords, "[] "), ",")
	if len(coordsSplit) < 2 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var xyz [3]float64
	for i := 0; i < len(coordsSplit) && i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[i]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return core.Position3D{}, ErrInvalidCoordinates
		}
		xyz[i] = v
	}
	return core.Position3D{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// ToLocal expresses p in the zone's frame: relative to the center and with
// the zone's yaw undone.
func ToLocal(zone *core.Zone, p core.Position3D) core.Position3D {
	d := p.Sub(zone.Center)
	if zone.Yaw == 0 {
		return d
	}
	sin, cos := math.Sincos(zone.Yaw * math.Pi / 180)
	return core.Position3D{
		X: d.X*cos - d.Z*sin,
		Y: d.Y,
		Z: d.X*sin + d.Z*cos,
	}
}

// ToWorld is the inverse of ToLocal.
func ToWorld(zone *core.Zone, local core.Position3D) core.Position3D {
	if zone.Yaw == 0 {
		return core.Position3D{X: zone.Center.X + local.X, Y: zone.Center.Y + local.Y, Z: zone.Center.Z + local.Z}
	}
	sin, cos := math.Sincos(zone.Yaw * math.Pi / 180)
	return core.Position3D{
		X: zone.Center.X + local.X*cos + local.Z*sin,
		Y: zone.Center.Y + local.Y,
		Z: zone.Center.Z - local.X*sin + local.Z*cos,
	}
}

// Contains reports whether p lies inside the zone's rotated box.
func Contains(zone *core.Zone, p core.Position3D) bool {
	l := ToLocal(zone, p)
	return math.Abs(l.X) <= zone.Size.X/2 &&
		math.Abs(l.Y) <= zone.Size.Y/2 &&
		math.Abs(l.Z) <= zone.Size.Z/2
}

// FindContaining returns the first zone in list order whose volume contains
// p. Later zones are not evaluated once one matches.
func FindContaining(p core.Position3D, zones []core.Zone) (*core.Zone, bool) {
	for i := range zones {
		if Contains(&zones[i], p) {
			return &zones[i], true
		}
	}
	return nil, false
}
