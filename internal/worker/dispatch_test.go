package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/raidstats/zonetracker/internal/counters"
	"github.com/raidstats/zonetracker/internal/dispatcher"
	"github.com/raidstats/zonetracker/internal/parser"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/storage"
	"github.com/raidstats/zonetracker/internal/tracker"
	"github.com/raidstats/zonetracker/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct{}

func (mockLogger) Debug(string, ...any) {}
func (mockLogger) Info(string, ...any)  {}
func (mockLogger) Error(string, ...any) {}

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu      sync.Mutex
	saveErr error
	raids   []*core.RaidSummary
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) SaveRaid(_ context.Context, s *core.RaidSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.raids = append(b.raids, s)
	return nil
}

func (b *mockBackend) saved() []*core.RaidSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*core.RaidSummary(nil), b.raids...)
}

// exportingBackend also reports an export file
type exportingBackend struct {
	mockBackend
	path string
}

func (b *exportingBackend) LastExportPath() string { return b.path }

type mockUploader struct {
	err   error
	paths []string
	metas []storage.UploadMetadata
}

func (u *mockUploader) Upload(path string, meta storage.UploadMetadata) error {
	u.paths = append(u.paths, path)
	u.metas = append(u.metas, meta)
	return u.err
}

type mockFlusher struct{ calls int }

func (f *mockFlusher) Flush(context.Context) error {
	f.calls++
	return nil
}

type staticStatus string

func (s staticStatus) Report() (string, error) { return string(s), nil }

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func forest() core.Catalog {
	return core.Catalog{
		"Forest": {
			{
				GUID: "A", Name: "Sawmill",
				Size: core.Position3D{X: 10, Y: 10, Z: 10},
				SubZones: []core.Zone{
					{GUID: "A1", Name: "Hut", Center: core.Position3D{X: 2}, Size: core.Position3D{X: 2, Y: 2, Z: 2}},
				},
			},
		},
	}
}

type harness struct {
	d       *dispatcher.Dispatcher
	m       *Manager
	backend *mockBackend
	clock   *session.ManualClock
	session *session.Context
	tracker *tracker.Tracker
	flusher *mockFlusher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := session.NewManualClock(t0)
	ctrs := counters.New(logger, false)

	tr, err := tracker.New(tracker.Dependencies{Counters: ctrs, Clock: clock, Logger: logger})
	require.NoError(t, err)

	d, err := dispatcher.New(mockLogger{})
	require.NoError(t, err)

	h := &harness{
		d:       d,
		backend: &mockBackend{},
		clock:   clock,
		session: session.NewContext(),
		tracker: tr,
		flusher: &mockFlusher{},
	}
	h.m = NewManager(Dependencies{
		Tracker:  tr,
		Counters: ctrs,
		Session:  h.session,
		Clock:    clock,
		Parser:   parser.NewParser(logger),
		Catalog:  forest(),
		Logger:   logger,
		Status:   staticStatus(`{"ok":true}`),
		Flusher:  h.flusher,
	}, h.backend)
	h.m.RegisterHandlers(d)
	return h
}

func (h *harness) send(t *testing.T, command string, args ...string) any {
	t.Helper()
	res, err := h.d.Dispatch(dispatcher.Event{Command: command, Args: args})
	require.NoError(t, err, command)
	return res
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.d.Close(ctx))
}

func TestRegisterHandlers(t *testing.T) {
	h := newHarness(t)
	for _, cmd := range []string{
		CmdSessionStart, CmdSessionEnd, CmdPosition, CmdCounters, CmdDamage, CmdKill,
		CmdItemAdd, CmdItemUpdate, CmdItemRemove, CmdContainer, CmdStatus, CmdExport,
	} {
		assert.True(t, h.d.HasHandler(cmd), cmd)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)

	id := h.send(t, CmdSessionStart, "Forest")
	require.IsType(t, "", id)
	assert.True(t, h.tracker.Enabled())

	h.send(t, CmdPosition, "-3,0,0", "0")
	assert.Equal(t, tracker.InZone, h.tracker.State())

	h.send(t, CmdCounters, "10", "1", "20", "5", "0")
	h.send(t, CmdPosition, "2,0,0", "5")
	assert.Equal(t, tracker.InZoneAndSubZone, h.tracker.State())

	h.send(t, CmdKill, "sks", "40", "scav", "25", "head")
	h.send(t, CmdContainer, "box1", "crate")
	h.send(t, CmdContainer, "box1", "crate")
	h.send(t, CmdItemAdd, "i1", "bolts", "2", "")
	h.send(t, CmdItemUpdate, "i1", "bolts", "3", "")

	h.send(t, CmdPosition, "50,0,0", "12")
	assert.Equal(t, tracker.NoZone, h.tracker.State())

	h.send(t, CmdSessionEnd)
	assert.False(t, h.tracker.Enabled())
	assert.False(t, h.session.Active())
	h.drain(t)

	raids := h.backend.saved()
	require.Len(t, raids, 1)
	r := raids[0]

	assert.Equal(t, id, r.SessionID)
	assert.Equal(t, "Forest", r.Location)
	assert.Equal(t, t0, r.StartTime)
	assert.Equal(t, t0.Add(12*time.Second), r.EndTime)
	assert.Equal(t, "Hut", r.ZoneNames["A1"])
	assert.Len(t, r.Zones, 1)

	d := r.Data
	assert.Equal(t, []string{"A", "A1"}, d.ZonesEntered)
	assert.InDelta(t, 12.0, d.TimeSpent["A"], 1e-9)
	assert.InDelta(t, 7.0, d.TimeSpent["A1"], 1e-9)
	assert.InDelta(t, 10.0, d.DistanceWalked["A"], 1e-9)
	assert.Zero(t, d.DistanceWalked["A1"])
	assert.Equal(t, 1, d.MedicinesUsed["A"])
	assert.Equal(t, 1, d.Kills["A1"])
	assert.Equal(t, 1, d.ContainersOpened["A1"])
	require.Len(t, d.LootedItems["A1"], 1)
	assert.Equal(t, 3, d.LootedItems["A1"][0].Amount)

	stats := h.m.ExportStats()
	assert.Equal(t, int64(1), stats.Exported)
	assert.Zero(t, stats.Pending)
	assert.Equal(t, 1, h.flusher.calls)
}

func TestExportedRecordIsDetached(t *testing.T) {
	h := newHarness(t)

	h.send(t, CmdSessionStart, "Forest")
	h.send(t, CmdPosition, "-3,0,0")
	h.send(t, CmdSessionEnd)
	h.drain(t)

	raids := h.backend.saved()
	require.Len(t, raids, 1)
	h.tracker.Data().MarkEntered("mutated")
	assert.Equal(t, []string{"A"}, raids[0].Data.ZonesEntered)
}

func TestCommandsOutsideSession(t *testing.T) {
	h := newHarness(t)

	for _, cmd := range []string{CmdSessionEnd, CmdPosition, CmdCounters, CmdDamage, CmdKill, CmdItemAdd, CmdContainer} {
		_, err := h.d.Dispatch(dispatcher.Event{Command: cmd, Args: []string{"1,2,3"}})
		assert.ErrorIs(t, err, ErrNoSession, cmd)
	}
}

func TestSessionStartEndsPrevious(t *testing.T) {
	h := newHarness(t)

	first := h.send(t, CmdSessionStart, "Forest")
	h.send(t, CmdPosition, "-3,0,0")
	second := h.send(t, CmdSessionStart, "Forest")
	assert.NotEqual(t, first, second)
	assert.True(t, h.session.Active())
	assert.Empty(t, h.tracker.Data().ZonesEntered)

	h.send(t, CmdSessionEnd)
	h.drain(t)

	raids := h.backend.saved()
	require.Len(t, raids, 2)
	assert.Equal(t, first, raids[0].SessionID)
	assert.Equal(t, second, raids[1].SessionID)
}

func TestParseErrorsAreReturned(t *testing.T) {
	h := newHarness(t)
	h.send(t, CmdSessionStart, "Forest")

	_, err := h.d.Dispatch(dispatcher.Event{Command: CmdPosition, Args: []string{"not,a,position"}})
	assert.Error(t, err)

	_, err = h.d.Dispatch(dispatcher.Event{Command: CmdSessionStart, Args: []string{""}})
	assert.Error(t, err)
	assert.True(t, h.session.Active(), "a bad start leaves the running session alone")
}

func TestExportFailureIsCounted(t *testing.T) {
	h := newHarness(t)
	h.backend.saveErr = errors.New("disk full")

	h.send(t, CmdSessionStart, "Forest")
	h.send(t, CmdSessionEnd)
	h.drain(t)

	stats := h.m.ExportStats()
	assert.Zero(t, stats.Exported)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestStatusCommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, `{"ok":true}`, h.send(t, CmdStatus))
}

func TestEndSessionWithoutDispatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrs := counters.New(logger, false)
	tr, err := tracker.New(tracker.Dependencies{Counters: ctrs, Logger: logger})
	require.NoError(t, err)

	backend := &mockBackend{}
	sess := session.NewContext()
	m := NewManager(Dependencies{
		Tracker: tr, Counters: ctrs, Session: sess,
		Parser: parser.NewParser(logger), Catalog: forest(), Logger: logger,
	}, backend)

	require.NoError(t, m.EndSession(), "no session is a no-op")

	sess.Start("Forest", time.Now())
	tr.Enable(forest(), "Forest")
	require.NoError(t, m.EndSession())
	assert.Len(t, backend.saved(), 1)
}

func newUploadManager(t *testing.T, backend storage.Backend, up Uploader) (*Manager, *session.Context, *tracker.Tracker) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrs := counters.New(logger, false)
	clock := session.NewManualClock(t0)
	tr, err := tracker.New(tracker.Dependencies{Counters: ctrs, Clock: clock, Logger: logger})
	require.NoError(t, err)

	sess := session.NewContext()
	m := NewManager(Dependencies{
		Tracker: tr, Counters: ctrs, Session: sess, Clock: clock,
		Parser: parser.NewParser(logger), Catalog: forest(), Logger: logger,
		Uploader: up, UploadTag: "weekly",
	}, backend)

	sess.Start("Forest", t0)
	tr.Enable(forest(), "Forest")
	tr.ReportPosition(core.Position3D{X: -3})
	clock.Advance(90 * time.Second)
	return m, sess, tr
}

func TestUploadAfterExport(t *testing.T) {
	up := &mockUploader{}
	backend := &exportingBackend{path: "/raids/Forest.json.gz"}
	m, sess, _ := newUploadManager(t, backend, up)
	id := sess.ID()

	require.NoError(t, m.EndSession())

	require.Len(t, up.paths, 1)
	assert.Equal(t, "/raids/Forest.json.gz", up.paths[0])
	assert.Equal(t, storage.UploadMetadata{
		Location:     "Forest",
		SessionID:    id,
		RaidDuration: 90,
		ZonesEntered: 1,
		Tag:          "weekly",
	}, up.metas[0])
	assert.Equal(t, int64(1), m.ExportStats().Uploaded)
}

func TestUploadSkippedWithoutExportFile(t *testing.T) {
	up := &mockUploader{}
	m, _, _ := newUploadManager(t, &mockBackend{}, up)

	require.NoError(t, m.EndSession())

	assert.Empty(t, up.paths)
	assert.Equal(t, int64(1), m.ExportStats().Exported)
}

func TestUploadFailureIsCounted(t *testing.T) {
	up := &mockUploader{err: errors.New("403")}
	m, _, _ := newUploadManager(t, &exportingBackend{path: "raid.json"}, up)

	require.NoError(t, m.EndSession())

	stats := m.ExportStats()
	assert.Equal(t, int64(1), stats.Exported)
	assert.Equal(t, int64(1), stats.UploadsFailed)
	assert.Zero(t, stats.Uploaded)
}
