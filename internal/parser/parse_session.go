package parser

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/raidstats/zonetracker/internal/counters"
	"github.com/raidstats/zonetracker/internal/geo"
)

// ParseSessionStart parses ":SESSION:START:|location".
func (p *Parser) ParseSessionStart(data []string) (string, error) {
	data, err := prepare(":SESSION:START:", data, 1)
	if err != nil {
		return "", err
	}
	if data[0] == "" {
		return "", errors.New("session start: empty location")
	}
	return data[0], nil
}

// ParsePosition parses ":POSITION:|x,y,z[|elapsedSeconds]".
func (p *Parser) ParsePosition(data []string) (ParsedPosition, error) {
	var pos ParsedPosition

	data, err := prepare(":POSITION:", data, 1)
	if err != nil {
		return pos, err
	}

	pos.Position, err = geo.Position3DFromString(data[0])
	if err != nil {
		return pos, fmt.Errorf("error parsing position %q: %w", data[0], err)
	}

	if len(data) > 1 && data[1] != "" {
		secs, err := parseFinite(data[1])
		if err != nil || secs < 0 || secs > math.MaxInt64/float64(time.Second) {
			return pos, fmt.Errorf("error parsing sample time %q", data[1])
		}
		pos.Elapsed = time.Duration(secs * float64(time.Second))
		pos.HasElapsed = true
	}
	return pos, nil
}

// ParseCounters parses
// ":COUNTERS:|distance|medicines|healed|dmgToPlayer|dmgToEnemy".
func (p *Parser) ParseCounters(data []string) (counters.Values, error) {
	var v counters.Values

	data, err := prepare(":COUNTERS:", data, 5)
	if err != nil {
		return v, err
	}

	floats := make([]float64, 0, 4)
	for i, idx := range []int{0, 2, 3, 4} {
		f, err := parseFinite(data[idx])
		if err != nil {
			return v, fmt.Errorf("error parsing counter %d: %w", i, err)
		}
		floats = append(floats, f)
	}
	meds, err := parseIntFromFloat(data[1])
	if err != nil {
		return v, fmt.Errorf("error parsing medicines used: %w", err)
	}

	v.Distance = floats[0]
	v.MedicinesUsed = int(meds)
	v.HealthHealed = floats[1]
	v.DamageToPlayer = floats[2]
	v.DamageToEnemy = floats[3]

	p.logger.Debug("Parsed counters", "distance", v.Distance, "medicines", v.MedicinesUsed)
	return v, nil
}
