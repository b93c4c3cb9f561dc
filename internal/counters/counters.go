// Package counters keeps the running session counters pushed by the host.
package counters

import (
	"log/slog"
	"math"

	"github.com/raidstats/zonetracker/pkg/core"
)

// Values is one absolute reading of the host's session counters.
type Values struct {
	Distance       float64
	MedicinesUsed  int
	HealthHealed   float64
	DamageToPlayer float64
	DamageToEnemy  float64
}

// Session holds the latest counter values for the running raid. Counters
// only move forward: a reading lower than the stored value is ignored.
//
// With deriveDistance set the host's distance counter is ignored and
// distance is integrated from position samples instead.
type Session struct {
	logger         *slog.Logger
	deriveDistance bool

	v       Values
	lastPos *core.Position3D
}

func New(logger *slog.Logger, deriveDistance bool) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{logger: logger, deriveDistance: deriveDistance}
}

// Reset zeroes every counter. Call at session start only.
func (s *Session) Reset() {
	s.v = Values{}
	s.lastPos = nil
}

// Update applies an absolute reading from the host.
func (s *Session) Update(v Values) {
	if !s.deriveDistance {
		s.v.Distance = s.forward("distance", s.v.Distance, v.Distance)
	}
	s.v.MedicinesUsed = int(s.forward("medicinesUsed", float64(s.v.MedicinesUsed), float64(v.MedicinesUsed)))
	s.v.HealthHealed = s.forward("healthHealed", s.v.HealthHealed, v.HealthHealed)
	s.v.DamageToPlayer = s.forward("damageToPlayer", s.v.DamageToPlayer, v.DamageToPlayer)
	s.v.DamageToEnemy = s.forward("damageToEnemy", s.v.DamageToEnemy, v.DamageToEnemy)
}

func (s *Session) forward(name string, current, next float64) float64 {
	if next < current || math.IsNaN(next) || math.IsInf(next, 0) {
		s.logger.Debug("Ignoring counter reading", "counter", name, "current", current, "received", next)
		return current
	}
	return next
}

// ObservePosition advances the derived odometer. It does nothing unless
// distance is derived.
func (s *Session) ObservePosition(p core.Position3D) {
	if !s.deriveDistance {
		return
	}
	if s.lastPos != nil {
		s.v.Distance += s.lastPos.DistanceTo(p)
	}
	s.lastPos = &p
}

func (s *Session) Values() Values { return s.v }

func (s *Session) DistanceWalked() float64 { return s.v.Distance }
func (s *Session) MedicinesUsed() int      { return s.v.MedicinesUsed }
func (s *Session) HealthHealed() float64   { return s.v.HealthHealed }
func (s *Session) DamageToPlayer() float64 { return s.v.DamageToPlayer }
func (s *Session) DamageToEnemy() float64  { return s.v.DamageToEnemy }
