package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/raidstats/zonetracker/pkg/core"
)

// Corners returns the four X/Z corners of the zone's rotated box in world
// space, counter-clockwise in local space.
func Corners(zone *core.Zone) [4]core.Position3D {
	hx, hz := zone.Size.X/2, zone.Size.Z/2
	return [4]core.Position3D{
		ToWorld(zone, core.Position3D{X: -hx, Z: -hz}),
		ToWorld(zone, core.Position3D{X: hx, Z: -hz}),
		ToWorld(zone, core.Position3D{X: hx, Z: hz}),
		ToWorld(zone, core.Position3D{X: -hx, Z: hz}),
	}
}

// FootprintWKT renders the zone's ground footprint (X/Z plane) as a WKT polygon.
func FootprintWKT(zone *core.Zone) string {
	c := Corners(zone)
	var b strings.Builder
	b.WriteString("POLYGON((")
	for i := 0; i <= len(c); i++ {
		p := c[i%len(c)]
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%s %s", formatCoord(p.X), formatCoord(p.Z))
	}
	b.WriteString("))")
	return b.String()
}

// Footprint parses the zone footprint into a simplefeatures geometry.
// Zones with a zero width or depth have no valid footprint.
func Footprint(zone *core.Zone) (geom.Geometry, error) {
	if zone.Size.X <= 0 || zone.Size.Z <= 0 {
		return geom.Geometry{}, fmt.Errorf("zone %q has a degenerate footprint", zone.GUID)
	}
	g, err := geom.UnmarshalWKT(FootprintWKT(zone))
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("zone %q footprint: %w", zone.GUID, err)
	}
	return g, nil
}

// Overlaps reports whether the volumes of a and b share any point: their
// footprints intersect and their vertical extents overlap.
func Overlaps(a, b *core.Zone) (bool, error) {
	if math.Abs(a.Center.Y-b.Center.Y) > (a.Size.Y+b.Size.Y)/2 {
		return false, nil
	}
	fa, err := Footprint(a)
	if err != nil {
		return false, err
	}
	fb, err := Footprint(b)
	if err != nil {
		return false, err
	}
	return geom.Intersects(fa, fb), nil
}

func formatCoord(v float64) string {
	// round away float noise from the rotation so rings close exactly
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("%g", r)
}
