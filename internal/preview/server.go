package preview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdbear/internal/history"
	"git.home.luguber.info/inful/mdbear/internal/metrics"
)

// Server serves the output tree plus the live-reload, metrics and status endpoints.
type Server struct {
	http     *http.Server
	listener net.Listener
	logger   *slog.Logger
}

type serverDeps struct {
	outputDir  string
	liveReload bool
	hub        *Hub
	registry   *prom.Registry
	status     *buildStatus
	history    *history.Store
	logger     *slog.Logger
}

func newMux(d serverDeps) *http.ServeMux {
	mux := http.NewServeMux()

	var files http.Handler = http.FileServer(http.Dir(d.outputDir))
	if d.liveReload {
		files = injectLiveReload(files)
		mux.Handle("/livereload", d.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			if _, err := w.Write([]byte(Script)); err != nil {
				d.logger.Debug("failed to write livereload script", "error", err)
			}
		})
	}
	mux.Handle("/", noCache(files))
	mux.Handle("/metrics", metrics.HTTPHandler(d.registry))
	mux.HandleFunc("/_status", func(w http.ResponseWriter, r *http.Request) {
		snap := d.status.snapshot()
		if d.history != nil {
			entries, err := d.history.Recent(r.Context(), 20)
			if err != nil {
				d.logger.Warn("Cannot read build history", "error", err)
			}
			for _, e := range entries {
				snap.History = append(snap.History, HistoryItem{
					BuildID:    e.BuildID,
					Trigger:    e.Trigger,
					Start:      e.Start,
					DurationMS: e.Duration().Milliseconds(),
					Outcome:    e.Outcome,
					Pages:      e.Pages,
					Skipped:    e.Skipped,
					Error:      e.Error,
				})
			}
			n, err := d.history.Count(r.Context())
			if err != nil {
				d.logger.Warn("Cannot count build history", "error", err)
			}
			snap.Recorded = n
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			d.logger.Debug("status encode failed", "error", err)
		}
	})
	return mux
}

// noCache makes browsers revalidate every file so rebuilt pages show up on reload.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// startServer listens on addr and serves handler in the background.
func startServer(addr string, handler http.Handler, logger *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		// No write timeout: SSE connections are long lived.
		http:     &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 300 * time.Second},
		listener: ln,
		logger:   logger,
	}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Preview server stopped", "error", err)
		}
	}()
	return s, nil
}

// Addr is the bound listener address.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Shutdown stops the server, giving open requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return s.http.Close()
	}
	return err
}
