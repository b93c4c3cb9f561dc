package parser

import (
	"time"

	"github.com/raidstats/zonetracker/pkg/core"
)

// ParsedPosition is one position sample. Elapsed is the session-relative
// sample time when the host supplied one.
type ParsedPosition struct {
	Position   core.Position3D
	Elapsed    time.Duration
	HasElapsed bool
}

// ParsedKill holds the arguments of a kill report.
type ParsedKill struct {
	Damage   core.DamageInfo
	Role     string
	Distance float64
	BodyPart string
}
