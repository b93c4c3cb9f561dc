package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raidstats/zonetracker/internal/api"
	"github.com/raidstats/zonetracker/internal/cache"
	"github.com/raidstats/zonetracker/internal/catalog"
	"github.com/raidstats/zonetracker/internal/config"
	"github.com/raidstats/zonetracker/internal/counters"
	"github.com/raidstats/zonetracker/internal/dispatcher"
	"github.com/raidstats/zonetracker/internal/influx"
	"github.com/raidstats/zonetracker/internal/logging"
	"github.com/raidstats/zonetracker/internal/monitor"
	"github.com/raidstats/zonetracker/internal/notify"
	intOtel "github.com/raidstats/zonetracker/internal/otel"
	"github.com/raidstats/zonetracker/internal/parser"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/storage"
	"github.com/raidstats/zonetracker/internal/storage/memory"
	"github.com/raidstats/zonetracker/internal/tracker"
	"github.com/raidstats/zonetracker/internal/worker"
	"github.com/raidstats/zonetracker/pkg/core"
)

// shutdownTimeout bounds draining the export lane and closing the backends.
const shutdownTimeout = time.Minute

// app is one wired pipeline: host commands enter through the dispatcher and
// finished raids leave through the storage backends.
type app struct {
	start   time.Time
	clock   session.Clock
	logsDir string

	slogManager *logging.SlogManager
	logger      *slog.Logger
	logFile     *os.File
	gelf        *logging.GELFSink
	otel        *intOtel.Provider

	session    *session.Context
	tracker    *tracker.Tracker
	backend    storage.Backend
	dispatcher *dispatcher.Dispatcher
	worker     *worker.Manager
	monitor    *monitor.Service
	journal    *journal
}

// newApp loads the configuration and wires every service. clock drives
// session timing: replays pass a manual clock advanced by sample times.
func newApp(clock session.Clock) (*app, error) {
	cfgErr := loadConfig()

	a := &app{
		start:   clock.Now(),
		clock:   clock,
		logsDir: config.GetString("logsDir"),
		session: session.NewContext(),
	}

	if err := os.MkdirAll(a.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs dir: %w", err)
	}
	if err := a.setupLogging(); err != nil {
		return nil, err
	}
	if cfgErr != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		a.logger.Info("Loaded config")
	}

	zl := logging.NewZerolog(a.logFile, config.GetString("logLevel"))

	cat, err := loadCatalog(a.logger)
	if err != nil {
		a.closeLogging(context.Background())
		return nil, err
	}

	hub := notify.NewHub(notify.NewLogObserver(a.logger))
	if config.GetBool("notify.journal") {
		path := filepath.Join(a.logsDir, fmt.Sprintf("zone_events.%s.jsonl", a.start.Format("20060102_150405")))
		a.journal, err = openJournal(path, config.GetInt("notify.bufferSize"), a.logger)
		if err != nil {
			a.logger.Warn("Failed to open zone event journal", "error", err)
		} else {
			hub.Subscribe(a.journal.events)
		}
	}

	sessionCounters := counters.New(a.logger, config.GetBool("counters.deriveDistance"))
	containers := config.GetContainerConfig()
	a.tracker, err = tracker.New(tracker.Dependencies{
		Counters:          sessionCounters,
		Clock:             clock,
		Logger:            a.logger,
		Hub:               hub,
		ComputerTemplates: cache.NewTemplateSet(containers.ComputerTemplates...),
		SafeTemplates:     cache.NewTemplateSet(containers.SafeTemplates...),
	})
	if err != nil {
		a.closeLogging(context.Background())
		return nil, fmt.Errorf("failed to create tracker: %w", err)
	}

	a.backend = a.openBackend(zl)

	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(zl))
	if err != nil {
		a.closeLogging(context.Background())
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	deps := worker.Dependencies{
		Tracker:  a.tracker,
		Counters: sessionCounters,
		Session:  a.session,
		Clock:    clock,
		Parser:   parser.NewParser(a.logger),
		Catalog:  cat,
		Logger:   a.logger,
		Flusher:  a.otel,
	}
	if config.GetBool("api.upload") {
		client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
		if err := client.Healthcheck(); err != nil {
			a.logger.Warn("Web frontend not reachable, uploads may fail", "error", err)
		}
		deps.Uploader = client
		deps.UploadTag = config.GetString("api.tag")
	}
	a.worker = worker.NewManager(deps, a.backend)

	a.monitor = monitor.NewService(monitor.Dependencies{
		Tracker:    a.tracker,
		Session:    a.session,
		Dispatcher: a.dispatcher,
		Exports:    a.worker,
		Clock:      clock,
		StatusPath: config.GetString("statusFile"),
	})
	a.worker.SetStatus(a.monitor)
	a.worker.RegisterHandlers(a.dispatcher)

	a.logger.Info("Zone tracker ready", "version", CurrentVersion, "commands", len(a.dispatcher.Commands()))
	return a, nil
}

func (a *app) setupLogging() error {
	path := logging.LogFilePath(a.logsDir, ExtensionName, a.start)

	// keep the previous log of the same second around
	if _, err := os.Stat(path); err == nil {
		os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	a.logFile = f

	level := config.GetString("logLevel")
	opts := []logging.Option{logging.WithContext(logging.SessionAttrs(a.session))}

	a.slogManager = logging.NewSlogManager()
	a.slogManager.Setup(f, level, nil, opts...)
	a.logger = a.slogManager.Logger()

	if config.GetBool("graylog.enabled") {
		sink, err := logging.NewGELFSink(config.GetString("graylog.address"), ExtensionName)
		if err != nil {
			a.logger.Warn("Failed to connect to Graylog", "error", err)
		} else {
			a.gelf = sink
			opts = append(opts, logging.WithGELF(sink))
		}
	}

	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		InstanceID:   uuid.NewString(),
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    f,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		a.logger.Warn("Failed to initialize OTel, continuing without", "error", err)
		provider, _ = intOtel.New(intOtel.Config{})
	}
	a.otel = provider

	// rebuild with the extra outputs
	a.slogManager.Setup(f, level, provider.LoggerProvider(), opts...)
	a.logger = a.slogManager.Logger()
	if provider.Enabled() {
		a.logger.Info("OTel logging enabled", "endpoint", otelCfg.Endpoint)
	}
	return nil
}

// openBackend initializes the configured storage backend plus InfluxDB when
// enabled. A primary backend that fails to start is replaced by JSON export.
func (a *app) openBackend(zl zerolog.Logger) storage.Backend {
	storageCfg := config.GetStorageConfig()

	primary, err := storage.NewBackend(storageCfg, zl)
	if err == nil {
		err = primary.Init()
	}
	if err != nil {
		a.logger.Error("Failed to initialize storage backend, falling back to JSON export",
			"type", storageCfg.Type, "error", err)
		primary = memory.New(storageCfg.Memory)
		if err := primary.Init(); err != nil {
			a.logger.Error("JSON export unavailable, raids will not be saved", "error", err)
			primary = nil
		}
	} else {
		a.logger.Info("Storage backend initialized", "type", storageCfg.Type)
	}

	backends := []storage.Backend{primary}
	if config.GetBool("influx.enabled") {
		backup := filepath.Join(a.logsDir, fmt.Sprintf("influx_backup.%s.lp.gz", a.start.Format("20060102_150405")))
		im := influx.NewManager(zl, backup)
		if err := im.Init(); err != nil {
			a.logger.Warn("InfluxDB disabled for this run", "error", err)
		} else {
			backends = append(backends, im)
		}
	}
	return storage.NewFanout(backends...)
}

// loadCatalog loads the configured catalog and its optional overlay. Zones
// without a GUID get one, which is written back so it stays stable.
func loadCatalog(logger *slog.Logger) (core.Catalog, error) {
	path := config.GetString("catalog.path")
	cat, err := loadCatalogFile(path, logger)
	if err != nil {
		return nil, err
	}

	if overlay := config.GetString("catalog.overlay"); overlay != "" {
		extra, err := loadCatalogFile(overlay, logger)
		if err != nil {
			return nil, err
		}
		cat = catalog.Merge(cat, extra)
	}

	if config.GetBool("catalog.lintOnLoad") {
		for _, issue := range catalog.Lint(cat) {
			logger.Warn("Zone catalog issue", "issue", issue.String())
		}
	}

	logger.Info("Zone catalog loaded", "path", path, "locations", len(cat))
	return cat, nil
}

func loadCatalogFile(path string, logger *slog.Logger) (core.Catalog, error) {
	cat, err := catalog.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone catalog %q: %w", path, err)
	}
	if catalog.Normalize(cat) && path != "" {
		if err := catalog.Save(path, cat); err != nil {
			logger.Warn("Assigned zone GUIDs could not be saved", "path", path, "error", err)
		} else {
			logger.Info("Assigned GUIDs to zones without one", "path", path)
		}
	}
	return cat, nil
}

// Close ends any open session, drains the export lane and releases every
// resource. It must run on the goroutine that dispatched the commands.
func (a *app) Close(ctx context.Context) error {
	var errs []error

	if err := a.worker.EndSession(); err != nil {
		errs = append(errs, err)
	}
	if err := a.dispatcher.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	stats := a.worker.ExportStats()
	a.logger.Info("Shutting down", "exported", stats.Exported, "failed", stats.Failed)

	if err := a.closeLogging(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *app) closeLogging(ctx context.Context) error {
	var errs []error
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.gelf != nil {
		if err := a.gelf.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
