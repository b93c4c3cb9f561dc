package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/raidstats/zonetracker/internal/notify"
)

// journal appends every zone event to a file as one JSON object per line.
// Events are handed over through a channel so the tracker never waits on disk.
type journal struct {
	events *notify.ChannelObserver
	file   *os.File
	logger *slog.Logger
	done   chan struct{}
}

func openJournal(path string, bufferSize int, logger *slog.Logger) (*journal, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	j := &journal{
		events: notify.NewChannelObserver(bufferSize),
		file:   f,
		logger: logger,
		done:   make(chan struct{}),
	}
	go j.run()
	return j, nil
}

func (j *journal) run() {
	defer close(j.done)
	enc := json.NewEncoder(j.file)
	for e := range j.events.Receive() {
		if err := enc.Encode(e); err != nil {
			j.logger.Error("Failed to write zone event", "guid", e.GUID, "error", err)
		}
	}
}

// Close stops the writer after the buffered events are written. The tracker
// must not publish afterwards.
func (j *journal) Close() error {
	j.events.Close()
	<-j.done
	if dropped := j.events.Dropped(); dropped > 0 {
		j.logger.Warn("Zone events dropped from journal", "count", dropped)
	}
	return j.file.Close()
}
