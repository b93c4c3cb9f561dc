// Package memory keeps finished raids in memory and exports each one to a
// JSON file.
package memory

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/raidstats/zonetracker/internal/config"
	"github.com/raidstats/zonetracker/pkg/core"
)

// MaxRetained is how many raid summaries the backend keeps in memory. Older
// ones are dropped once the limit is reached.
const MaxRetained = 16

// Backend stores raid summaries in memory and exports them to JSON
type Backend struct {
	cfg            config.MemoryConfig
	raids          []*core.RaidSummary
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend. An empty OutputDir keeps raids in memory only.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg: cfg,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveRaid records the summary and writes its export file.
func (b *Backend) SaveRaid(ctx context.Context, summary *core.RaidSummary) error {
	if summary == nil {
		return fmt.Errorf("nil raid summary")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir != "" {
		path := filepath.Join(b.cfg.OutputDir, ExportFileName(summary, b.cfg.CompressOutput))
		var err error
		if b.cfg.CompressOutput {
			err = writeGzipJSON(path, summary)
		} else {
			err = writeJSON(path, summary)
		}
		if err != nil {
			_ = os.Remove(path)
			return err
		}
		b.lastExportPath = path
	}

	b.retain(summary)
	return nil
}

func (b *Backend) retain(summary *core.RaidSummary) {
	if len(b.raids) >= MaxRetained {
		n := copy(b.raids, b.raids[len(b.raids)-MaxRetained+1:])
		clear(b.raids[n:])
		b.raids = b.raids[:n]
	}
	b.raids = append(b.raids, summary)
}

// Raids returns the last MaxRetained summaries saved, oldest first.
func (b *Backend) Raids() []*core.RaidSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*core.RaidSummary, len(b.raids))
	copy(out, b.raids)
	return out
}

// LastExportPath returns the file written by the most recent SaveRaid.
func (b *Backend) LastExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// ExportFileName builds "<location>_<start>_<session prefix>.json[.gz]".
func ExportFileName(summary *core.RaidSummary, compressed bool) string {
	location := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, summary.Location)
	if location == "" {
		location = "raid"
	}

	session := summary.SessionID
	if len(session) > 8 {
		session = session[:8]
	}

	name := fmt.Sprintf("%s_%s", location, summary.StartTime.Format("20060102_150405"))
	if session != "" {
		name += "_" + session
	}
	if compressed {
		return name + ".json.gz"
	}
	return name + ".json"
}

func writeJSON(path string, data *core.RaidSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := json.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode raid: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, data *core.RaidSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		f.Close()
		return fmt.Errorf("failed to encode raid: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
