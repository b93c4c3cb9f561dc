package tracker

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/raidstats/zonetracker/internal/tracker"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
