// Package catalog loads, normalizes and checks zone catalogs.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/raidstats/zonetracker/pkg/core"
)

//go:embed default_zones.json
var defaultZones []byte

// ErrUnsupportedFormat is returned for catalog files that are neither JSON
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Load reads a catalog from a .json, .yaml or .yml file.
func Load(path string) (core.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Decode(raw, filepath.Ext(path))
}

// LoadOrDefault behaves like Load but falls back to the built-in catalog
// when path is empty or does not exist.
func LoadOrDefault(path string) (core.Catalog, error) {
	if path == "" {
		return Default()
	}
	cat, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return cat, err
}

// Default returns a fresh copy of the built-in catalog.
func Default() (core.Catalog, error) {
	return Decode(defaultZones, ".json")
}

// Decode parses raw in the format named by ext.
func Decode(raw []byte, ext string) (core.Catalog, error) {
	cat := core.Catalog{}
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &cat); err != nil {
			return nil, fmt.Errorf("decoding json catalog: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cat); err != nil {
			return nil, fmt.Errorf("decoding yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return cat, nil
}

// Save writes cat to path in the format named by its extension.
func Save(path string, cat core.Catalog) error {
	var (
		raw []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = json.MarshalIndent(cat, "", "  ")
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(cat)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// Normalize gives every zone and sub-zone without a usable GUID a fresh one.
// It reports whether any GUID was assigned.
func Normalize(cat core.Catalog) bool {
	changed := false
	for _, zones := range cat {
		for i := range zones {
			if normalizeZone(&zones[i]) {
				changed = true
			}
		}
	}
	return changed
}

func normalizeZone(z *core.Zone) bool {
	changed := false
	if !z.HasGUID() {
		z.GUID = uuid.NewString()
		changed = true
	}
	for i := range z.SubZones {
		if normalizeZone(&z.SubZones[i]) {
			changed = true
		}
	}
	return changed
}

// Merge returns base with overlay applied per location: zones whose GUID
// already exists are replaced in place, the rest are appended in overlay
// order. Neither input is modified.
func Merge(base, overlay core.Catalog) core.Catalog {
	out := make(core.Catalog, len(base)+len(overlay))
	for loc, zones := range base {
		out[loc] = append([]core.Zone(nil), zones...)
	}
	for loc, zones := range overlay {
		merged := out[loc]
		for _, z := range zones {
			idx := -1
			if z.HasGUID() {
				for i := range merged {
					if merged[i].GUID == z.GUID {
						idx = i
						break
					}
				}
			}
			if idx >= 0 {
				merged[idx] = z
			} else {
				merged = append(merged, z)
			}
		}
		out[loc] = merged
	}
	return out
}
