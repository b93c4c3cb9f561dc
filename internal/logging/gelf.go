package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// GELFSink ships log lines to a Graylog input over UDP.
type GELFSink struct {
	w *gelf.Writer
}

// NewGELFSink dials the GELF UDP endpoint at address ("host:port").
func NewGELFSink(address, facility string) (*GELFSink, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create gelf writer: %w", err)
	}
	if facility != "" {
		w.Facility = facility
	}
	return &GELFSink{w: w}, nil
}

// Write sends one log line as a GELF message.
func (s *GELFSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *GELFSink) Close() error {
	return s.w.Close()
}
