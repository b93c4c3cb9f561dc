package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/raidstats/zonetracker/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishInOrder(t *testing.T) {
	var got []string
	h := NewHub(
		ObserverFunc(func(e core.ZoneEvent) { got = append(got, "first:"+e.GUID) }),
		nil,
		ObserverFunc(func(e core.ZoneEvent) { got = append(got, "second:"+e.GUID) }),
	)

	h.Publish(core.ZoneEvent{Kind: core.ZoneEntered, GUID: "A"})

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"first:A", "second:A"}, got)
}

func TestHub_NilIsSafe(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Publish(core.ZoneEvent{GUID: "A"}) })
	assert.Equal(t, 0, h.Len())
}

func TestChannelObserver_DropsWhenFull(t *testing.T) {
	c := NewChannelObserver(2)

	c.OnZoneEvent(core.ZoneEvent{GUID: "1"})
	c.OnZoneEvent(core.ZoneEvent{GUID: "2"})
	c.OnZoneEvent(core.ZoneEvent{GUID: "3"})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Dropped())

	e := <-c.Receive()
	assert.Equal(t, "1", e.GUID)
}

func TestChannelObserver_MinimumSize(t *testing.T) {
	c := NewChannelObserver(0)
	c.OnZoneEvent(core.ZoneEvent{GUID: "1"})
	assert.Equal(t, 1, c.Len())
	c.Close()

	var n int
	for range c.Receive() {
		n++
	}
	assert.Equal(t, 1, n)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	o := NewLogObserver(logger)

	o.OnZoneEvent(core.ZoneEvent{Kind: core.ZoneEntered, Level: core.LevelSubZone, GUID: "A1", Name: "Shed", ParentGUID: "A"})
	o.OnZoneEvent(core.ZoneEvent{Kind: core.ZoneExited, Level: core.LevelZone, GUID: "A", Name: "Sawmill"})

	out := buf.String()
	require.Contains(t, out, `msg="Zone entered"`)
	assert.Contains(t, out, "level=subzone")
	assert.Contains(t, out, "parent=A")
	assert.Contains(t, out, `msg="Zone exited"`)
	assert.Contains(t, out, "guid=A")
}
