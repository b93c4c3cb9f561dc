package monitor

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raidstats/zonetracker/internal/dispatcher"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/tracker"
	"github.com/raidstats/zonetracker/internal/worker"
	"github.com/raidstats/zonetracker/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fixedExports worker.ExportStats

func (f fixedExports) ExportStats() worker.ExportStats { return worker.ExportStats(f) }

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTracker(t *testing.T, clock session.Clock) *tracker.Tracker {
	t.Helper()
	tr, err := tracker.New(tracker.Dependencies{
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return tr
}

func catalog() core.Catalog {
	return core.Catalog{"Forest": {{
		GUID: "A", Name: "Sawmill", Size: core.Position3D{X: 10, Y: 10, Z: 10},
		SubZones: []core.Zone{{GUID: "A1", Name: "Hut", Size: core.Position3D{X: 2, Y: 2, Z: 2}}},
	}}}
}

func TestStatus_Idle(t *testing.T) {
	clock := session.NewManualClock(t0)
	svc := NewService(Dependencies{Tracker: newTracker(t, clock), Session: session.NewContext(), Clock: clock})

	st := svc.Status()
	assert.Equal(t, t0, st.Time)
	assert.False(t, st.Enabled)
	assert.Equal(t, "NoZone", st.State)
	assert.Empty(t, st.SessionID)
	assert.Nil(t, st.Zone)
	assert.Nil(t, st.Dispatcher)
	assert.Nil(t, st.Exports)
}

func TestStatus_InSubZone(t *testing.T) {
	clock := session.NewManualClock(t0)
	tr := newTracker(t, clock)
	sess := session.NewContext()
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)

	id := sess.Start("Forest", t0)
	tr.Enable(catalog(), "Forest")
	tr.ReportPosition(core.Position3D{})

	svc := NewService(Dependencies{
		Tracker:    tr,
		Session:    sess,
		Dispatcher: d,
		Exports:    fixedExports{Exported: 2, Pending: 1},
		Clock:      clock,
	})

	st := svc.Status()
	assert.True(t, st.Enabled)
	assert.Equal(t, id, st.SessionID)
	assert.Equal(t, "Forest", st.Location)
	assert.Equal(t, "InZoneAndSubZone", st.State)
	assert.Equal(t, &ZoneRef{GUID: "A", Name: "Sawmill"}, st.Zone)
	assert.Equal(t, &ZoneRef{GUID: "A1", Name: "Hut"}, st.SubZone)
	assert.Equal(t, []string{"A", "A1"}, st.ZonesEntered)
	require.NotNil(t, st.Dispatcher)
	require.NotNil(t, st.Exports)
	assert.Equal(t, int64(2), st.Exports.Exported)
}

func TestReport_WritesStatusFile(t *testing.T) {
	clock := session.NewManualClock(t0)
	path := filepath.Join(t.TempDir(), "status.json")
	svc := NewService(Dependencies{Tracker: newTracker(t, clock), Session: session.NewContext(), Clock: clock, StatusPath: path})

	out, err := svc.Report()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "NoZone", decoded["state"])
	assert.Equal(t, false, decoded["enabled"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, out, string(raw))
}

func TestReport_BadStatusPath(t *testing.T) {
	clock := session.NewManualClock(t0)
	svc := NewService(Dependencies{
		Tracker:    newTracker(t, clock),
		StatusPath: filepath.Join(t.TempDir(), "missing", "status.json"),
	})

	out, err := svc.Report()
	assert.Error(t, err)
	assert.NotEmpty(t, out)
}
