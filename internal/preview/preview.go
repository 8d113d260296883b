// Package preview serves a built site locally and rebuilds it when sources change.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/browser"

	"git.home.luguber.info/inful/mdbear/internal/config"
	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/history"
	"git.home.luguber.info/inful/mdbear/internal/logfields"
	"git.home.luguber.info/inful/mdbear/internal/metrics"
	"git.home.luguber.info/inful/mdbear/internal/site"
)

const shutdownTimeout = 5 * time.Second

// openBrowser is replaced in tests.
var openBrowser = browser.OpenURL

// Options configure Serve. Zero values fall back to the config file.
type Options struct {
	ConfigPath string
	// Port overrides serve.port when positive.
	Port int
	// Addr overrides the listen address entirely, e.g. "127.0.0.1:0".
	Addr string
	// DisableLiveReload turns off script injection and /livereload.
	DisableLiveReload bool
	// OpenBrowser opens the site in the default browser once listening, in
	// addition to serve.open.
	OpenBrowser bool
	// Debounce overrides serve.debounce when non-nil.
	Debounce *time.Duration
	Logger   *slog.Logger
	// Ready is called with the bound address once the server accepts connections.
	Ready func(addr string)
}

// Serve builds the site once, then serves it and rebuilds on every relevant
// change until ctx is cancelled. Only the initial build is fatal.
func Serve(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := metrics.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	buildOpts := site.Options{Logger: logger, Recorder: recorder}

	report, err := site.Build(ctx, opts.ConfigPath, buildOpts)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	store, err := history.Open(historyDSN(cfg))
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "cannot open build history").
			Fatal().WithContext("path", cfg.Serve.HistoryDB).Build()
	}
	defer func() { _ = store.Close() }()

	status := &buildStatus{}
	status.record("initial", report, nil)
	if _, err := store.Record(ctx, "initial", report); err != nil {
		logger.Warn("Cannot record build", logfields.Error(err))
	}

	hub := NewHub(logger)
	liveReload := cfg.Serve.LiveReloadEnabled() && !opts.DisableLiveReload
	mux := newMux(serverDeps{
		outputDir:  cfg.OutputPath(),
		liveReload: liveReload,
		hub:        hub,
		registry:   registry,
		status:     status,
		history:    store,
		logger:     logger,
	})

	addr := listenAddr(cfg, opts)
	srv, err := startServer(addr, mux, logger)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "cannot start preview server").
			Fatal().WithContext("addr", addr).Build()
	}
	logger.Info("Preview server listening", "addr", srv.Addr(), "live_reload", liveReload)
	if opts.Ready != nil {
		opts.Ready(srv.Addr())
	}
	if opts.OpenBrowser || cfg.Serve.Open {
		url := browserURL(srv.Addr())
		if err := openBrowser(url); err != nil {
			logger.Warn("Cannot open browser", logfields.URL(url), logfields.Error(err))
		}
	}

	configAbs, _ := filepath.Abs(opts.ConfigPath)
	watcher, err := NewWatcher(WatchOptions{
		ContentDir: cfg.ContentPath(),
		ThemeDir:   cfg.ThemePath(),
		ConfigFile: configAbs,
		Ignore:     []string{cfg.OutputPath()},
	}, logger)
	if err != nil {
		shutdown(srv, hub, logger)
		return errors.WrapError(err, errors.CategoryRuntime, "cannot watch sources").Fatal().Build()
	}
	defer func() { _ = watcher.Close() }()

	window := cfg.Serve.DebounceWindow
	if opts.Debounce != nil {
		window = *opts.Debounce
	}

	rebuild := func(ctx context.Context, ev Event) error {
		recorder.IncRebuildTrigger(ev.Source)
		report, err := site.Build(ctx, opts.ConfigPath, buildOpts)
		status.record(ev.Path, report, err)
		if _, herr := store.Record(ctx, ev.Path, report); herr != nil {
			logger.Warn("Cannot record build", logfields.Error(herr))
		}
		if err != nil {
			return err
		}
		if liveReload {
			hub.Broadcast(report.BuildID)
		}
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		RunRebuilds(ctx, watcher.Events(), window, rebuild, logger)
	}()

	<-ctx.Done()
	logger.Info("Shutting down preview server")
	shutdown(srv, hub, logger)
	wg.Wait()
	return nil
}

func shutdown(srv *Server, hub *Hub, logger *slog.Logger) {
	hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
}

// listenAddr binds to loopback only unless Options.Addr says otherwise.
func listenAddr(cfg *config.Config, opts Options) string {
	if opts.Addr != "" {
		return opts.Addr
	}
	port := cfg.Serve.Port
	if opts.Port > 0 {
		port = opts.Port
	}
	return net.JoinHostPort("127.0.0.1", fmt.Sprint(port))
}

func browserURL(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	return "http://localhost:" + port + "/"
}

// historyDSN resolves serve.history_db against the config directory.
func historyDSN(cfg *config.Config) string {
	dsn := cfg.Serve.HistoryDB
	if dsn == "" || dsn == history.MemoryDSN || filepath.IsAbs(dsn) {
		return dsn
	}
	return filepath.Join(cfg.Root, dsn)
}
