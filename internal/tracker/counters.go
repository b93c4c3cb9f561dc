package tracker

// SessionCounterReader exposes the host's running session counters. Values
// are cumulative since session start and must not reset mid-session.
type SessionCounterReader interface {
	DistanceWalked() float64
	MedicinesUsed() int
	HealthHealed() float64
	DamageToPlayer() float64
	DamageToEnemy() float64
}

type zeroCounters struct{}

func (zeroCounters) DistanceWalked() float64 { return 0 }
func (zeroCounters) MedicinesUsed() int      { return 0 }
func (zeroCounters) HealthHealed() float64   { return 0 }
func (zeroCounters) DamageToPlayer() float64 { return 0 }
func (zeroCounters) DamageToEnemy() float64  { return 0 }
