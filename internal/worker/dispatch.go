package worker

import (
	"context"
	"fmt"
	"slices"

	"github.com/raidstats/zonetracker/internal/dispatcher"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/storage"
	"github.com/raidstats/zonetracker/pkg/core"
)

// Commands understood by the worker.
const (
	CmdSessionStart = ":SESSION:START:"
	CmdSessionEnd   = ":SESSION:END:"
	CmdPosition     = ":POSITION:"
	CmdCounters     = ":COUNTERS:"
	CmdDamage       = ":DAMAGE:"
	CmdKill         = ":KILL:"
	CmdItemAdd      = ":ITEM:ADD:"
	CmdItemUpdate   = ":ITEM:UPDATE:"
	CmdItemRemove   = ":ITEM:REMOVE:"
	CmdContainer    = ":CONTAINER:"
	CmdStatus       = ":STATUS:"

	// CmdExport is internal: queued by session end, never sent by the host.
	CmdExport = ":EXPORT:"
)

// RegisterHandlers registers all event handlers with the dispatcher.
// Tracker commands run synchronously on the caller's goroutine, which keeps
// the tracker confined to it. Exports run on their own buffered lane.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(CmdSessionStart, m.handleSessionStart, dispatcher.Logged())
	d.Register(CmdSessionEnd, m.handleSessionEnd, dispatcher.Logged())

	d.Register(CmdPosition, m.handlePosition)
	d.Register(CmdCounters, m.handleCounters)

	d.Register(CmdDamage, m.handleDamage, dispatcher.Logged())
	d.Register(CmdKill, m.handleKill, dispatcher.Logged())
	d.Register(CmdItemAdd, m.handleItemAdd, dispatcher.Logged())
	d.Register(CmdItemUpdate, m.handleItemUpdate, dispatcher.Logged())
	d.Register(CmdItemRemove, m.handleItemRemove, dispatcher.Logged())
	d.Register(CmdContainer, m.handleContainer, dispatcher.Logged())

	if m.deps.Status != nil {
		d.Register(CmdStatus, m.handleStatus)
	}

	// a session end must never be lost, so the lane blocks instead of dropping
	d.Register(CmdExport, m.handleExport, dispatcher.Buffered(16), dispatcher.Blocking(), dispatcher.Logged())
	m.dispatch = func(command string) error {
		_, err := d.Dispatch(dispatcher.Event{Command: command})
		return err
	}
}

func (m *Manager) handleSessionStart(e dispatcher.Event) (any, error) {
	location, err := m.deps.Parser.ParseSessionStart(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if m.deps.Session.Active() {
		m.deps.Logger.Warn("Session started while another is active, ending it",
			"previous", m.deps.Session.ID())
		if err := m.EndSession(); err != nil {
			return nil, err
		}
	}

	m.deps.Counters.Reset()
	id := m.deps.Session.Start(location, m.deps.Clock.Now())
	m.deps.Tracker.Enable(m.deps.Catalog, location)

	m.deps.Logger.Info("Session started", "session", id, "location", location,
		"zones", len(m.deps.Tracker.Zones()))
	return id, nil
}

func (m *Manager) handleSessionEnd(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	return nil, m.EndSession()
}

// EndSession closes the open zones, snapshots the record and queues it for
// export. It must run on the tracker goroutine.
func (m *Manager) EndSession() error {
	if !m.deps.Session.Active() {
		return nil
	}

	m.deps.Tracker.Disable()
	location := m.deps.Session.Location()
	summary := &core.RaidSummary{
		SessionID: m.deps.Session.ID(),
		Location:  location,
		StartTime: m.deps.Session.StartTime(),
		EndTime:   m.deps.Clock.Now(),
		ZoneNames: m.deps.Catalog.Names(location),
		Zones:     slices.Clone(m.deps.Tracker.Zones()),
		Data:      m.deps.Tracker.Data().Clone(),
	}
	m.deps.Session.End()

	m.deps.Logger.Info("Session ended", "session", summary.SessionID,
		"zonesEntered", len(summary.Data.ZonesEntered))

	m.exports.Push(summary)
	if m.dispatch == nil {
		m.exportPending()
		return nil
	}
	if err := m.dispatch(CmdExport); err != nil {
		return fmt.Errorf("failed to queue export: %w", err)
	}
	return nil
}

func (m *Manager) handleExport(e dispatcher.Event) (any, error) {
	m.exportPending()
	return nil, nil
}

func (m *Manager) exportPending() {
	for _, summary := range m.exports.GetAndEmpty() {
		m.export(summary)
	}
}

func (m *Manager) export(summary *core.RaidSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), m.deps.ExportTimeout)
	defer cancel()

	if m.backend == nil {
		m.deps.Logger.Warn("No storage backend, raid not saved", "session", summary.SessionID)
		return
	}
	if err := m.backend.SaveRaid(ctx, summary); err != nil {
		m.exportFails.Add(1)
		m.deps.Logger.Error("Failed to save raid", "session", summary.SessionID, "error", err)
	} else {
		m.exported.Add(1)
		m.deps.Logger.Info("Raid saved", "session", summary.SessionID, "location", summary.Location)
		if m.deps.Uploader != nil {
			m.upload(summary)
		}
	}

	if m.deps.Flusher != nil {
		if err := m.deps.Flusher.Flush(ctx); err != nil {
			m.deps.Logger.Warn("Flush after export failed", "error", err)
		}
	}
}

func (m *Manager) upload(summary *core.RaidSummary) {
	exporter, ok := m.backend.(storage.Exporter)
	if !ok || exporter.LastExportPath() == "" {
		m.deps.Logger.Warn("No export file to upload", "session", summary.SessionID)
		return
	}
	path := exporter.LastExportPath()

	meta := storage.UploadMetadata{
		Location:     summary.Location,
		SessionID:    summary.SessionID,
		RaidDuration: summary.EndTime.Sub(summary.StartTime).Seconds(),
		Tag:          m.deps.UploadTag,
	}
	if summary.Data != nil {
		meta.ZonesEntered = len(summary.Data.ZonesEntered)
	}

	if err := m.deps.Uploader.Upload(path, meta); err != nil {
		m.uploadFails.Add(1)
		m.deps.Logger.Error("Failed to upload raid", "session", summary.SessionID, "path", path, "error", err)
		return
	}
	m.uploaded.Add(1)
	m.deps.Logger.Info("Raid uploaded", "session", summary.SessionID, "path", path)
}

func (m *Manager) handlePosition(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	pos, err := m.deps.Parser.ParsePosition(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report position: %w", err)
	}
	if pos.HasElapsed {
		if mc, ok := m.deps.Clock.(*session.ManualClock); ok {
			mc.Set(m.deps.Session.StartTime().Add(pos.Elapsed))
		}
	}

	m.deps.Counters.ObservePosition(pos.Position)
	m.deps.Tracker.ReportPosition(pos.Position)
	return nil, nil
}

func (m *Manager) handleCounters(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	v, err := m.deps.Parser.ParseCounters(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to update counters: %w", err)
	}
	m.deps.Counters.Update(v)
	return nil, nil
}

func (m *Manager) handleDamage(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	dmg, err := m.deps.Parser.ParseDamage(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report damage: %w", err)
	}
	m.deps.Tracker.ReportDamageDealt(dmg)
	return nil, nil
}

func (m *Manager) handleKill(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	k, err := m.deps.Parser.ParseKill(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report kill: %w", err)
	}
	m.deps.Tracker.ReportKill(k.Damage, k.Role, k.Distance, k.BodyPart)
	return nil, nil
}

func (m *Manager) handleItemAdd(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	item, err := m.deps.Parser.ParseItem(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report item: %w", err)
	}
	m.deps.Tracker.ReportItemAdded(item)
	return nil, nil
}

func (m *Manager) handleItemUpdate(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	item, err := m.deps.Parser.ParseItem(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report item update: %w", err)
	}
	m.deps.Tracker.ReportItemUpdated(item)
	return nil, nil
}

func (m *Manager) handleItemRemove(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	item, err := m.deps.Parser.ParseItemRemoved(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report item removal: %w", err)
	}
	m.deps.Tracker.ReportItemRemoved(item)
	return nil, nil
}

func (m *Manager) handleContainer(e dispatcher.Event) (any, error) {
	if !m.deps.Session.Active() {
		return nil, ErrNoSession
	}
	c, err := m.deps.Parser.ParseContainer(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to report container: %w", err)
	}
	m.deps.Tracker.ReportContainerOpened(c)
	return nil, nil
}

func (m *Manager) handleStatus(e dispatcher.Event) (any, error) {
	return m.deps.Status.Report()
}
