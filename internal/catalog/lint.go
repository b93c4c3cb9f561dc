package catalog

import (
	"fmt"
	"sort"

	"github.com/raidstats/zonetracker/internal/geo"
	"github.com/raidstats/zonetracker/pkg/core"
)

// IssueKind classifies a lint finding.
type IssueKind string

const (
	IssueOverlap       IssueKind = "overlap"
	IssueDuplicateGUID IssueKind = "duplicate-guid"
	IssueMissingGUID   IssueKind = "missing-guid"
	IssueDegenerate    IssueKind = "degenerate"
)

// Issue is one lint finding. Overlaps are advisory: at runtime the first
// matching zone in list order wins.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Location string    `json:"location"`
	Parent   string    `json:"parent,omitempty"`
	First    string    `json:"first"`
	Second   string    `json:"second,omitempty"`
}

func (i Issue) String() string {
	scope := i.Location
	if i.Parent != "" {
		scope += "/" + i.Parent
	}
	if i.Second != "" {
		return fmt.Sprintf("%s: %s %s and %s", scope, i.Kind, i.First, i.Second)
	}
	return fmt.Sprintf("%s: %s %s", scope, i.Kind, i.First)
}

// Lint checks sibling zones for overlapping volumes, GUIDs for uniqueness
// and sizes for degenerate footprints. Locations are visited in name order.
func Lint(cat core.Catalog) []Issue {
	locations := make([]string, 0, len(cat))
	for loc := range cat {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var issues []Issue
	for _, loc := range locations {
		zones := cat[loc]
		seen := make(map[string]string)
		issues = append(issues, lintSiblings(loc, "", zones)...)
		for i := range zones {
			issues = append(issues, lintGUID(loc, "", &zones[i], seen)...)
			for j := range zones[i].SubZones {
				issues = append(issues, lintGUID(loc, zones[i].GUID, &zones[i].SubZones[j], seen)...)
			}
			issues = append(issues, lintSiblings(loc, zones[i].GUID, zones[i].SubZones)...)
		}
	}
	return issues
}

func lintGUID(loc, parent string, z *core.Zone, seen map[string]string) []Issue {
	if !z.HasGUID() {
		return []Issue{{Kind: IssueMissingGUID, Location: loc, Parent: parent, First: z.Name}}
	}
	if _, dup := seen[z.GUID]; dup {
		return []Issue{{Kind: IssueDuplicateGUID, Location: loc, Parent: parent, First: z.GUID}}
	}
	seen[z.GUID] = z.Name
	return nil
}

func lintSiblings(loc, parent string, zones []core.Zone) []Issue {
	var issues []Issue
	for i := range zones {
		if zones[i].Size.X <= 0 || zones[i].Size.Y <= 0 || zones[i].Size.Z <= 0 {
			issues = append(issues, Issue{Kind: IssueDegenerate, Location: loc, Parent: parent, First: label(&zones[i])})
			continue
		}
		for j := i + 1; j < len(zones); j++ {
			overlap, err := geo.Overlaps(&zones[i], &zones[j])
			if err != nil || !overlap {
				continue
			}
			issues = append(issues, Issue{
				Kind:     IssueOverlap,
				Location: loc,
				Parent:   parent,
				First:    label(&zones[i]),
				Second:   label(&zones[j]),
			})
		}
	}
	return issues
}

func label(z *core.Zone) string {
	if z.Name != "" {
		return z.Name
	}
	return z.GUID
}
