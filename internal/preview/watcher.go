package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdbear/internal/logfields"
)

// Event sources, used as trigger labels.
const (
	SourceContent = "content"
	SourceTheme   = "theme"
	SourceConfig  = "config"
)

// Event is a relevant filesystem change.
type Event struct {
	Path   string
	Op     fsnotify.Op
	Source string
}

// WatchOptions selects what to watch. Empty or missing paths are skipped.
type WatchOptions struct {
	ContentDir string
	ThemeDir   string
	ConfigFile string
	// Ignore lists directories whose changes never trigger a rebuild (the output dir).
	Ignore []string
}

// Watcher turns fsnotify events into an ordered stream of Events.
type Watcher struct {
	fs     *fsnotify.Watcher
	opts   WatchOptions
	roots  map[string]string
	events chan Event
	logger *slog.Logger
}

// NewWatcher registers watches for the content and theme trees (recursively) and
// the directory holding the config file.
func NewWatcher(opts WatchOptions, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fs:     fw,
		opts:   opts,
		roots:  map[string]string{},
		events: make(chan Event, 64),
		logger: logger,
	}
	w.opts.Ignore = make([]string, 0, len(opts.Ignore))
	for _, dir := range opts.Ignore {
		w.opts.Ignore = append(w.opts.Ignore, filepath.Clean(dir))
	}

	for source, dir := range map[string]string{SourceContent: opts.ContentDir, SourceTheme: opts.ThemeDir} {
		if dir == "" {
			continue
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			logger.Warn("Not watching missing directory", logfields.Path(dir), "source", source)
			continue
		}
		w.roots[filepath.Clean(dir)] = source
		w.addDirsRecursive(dir)
	}
	if opts.ConfigFile != "" {
		if err := fw.Add(filepath.Dir(opts.ConfigFile)); err != nil {
			logger.Warn("Cannot watch config file", logfields.Path(opts.ConfigFile), logfields.Error(err))
		}
	}
	return w, nil
}

// Events is the single ordered stream of relevant changes. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run forwards filesystem events until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			e, relevant := w.classify(ev)
			if !relevant {
				continue
			}
			w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
			select {
			case w.events <- e:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Close releases the underlying watches.
func (w *Watcher) Close() error { return w.fs.Close() }

func (w *Watcher) classify(ev fsnotify.Event) (Event, bool) {
	if ev.Op == fsnotify.Chmod || shouldIgnoreEvent(ev.Name) {
		return Event{}, false
	}
	name := filepath.Clean(ev.Name)
	for _, dir := range w.opts.Ignore {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return Event{}, false
		}
	}

	if w.opts.ConfigFile != "" && name == filepath.Clean(w.opts.ConfigFile) {
		return Event{Path: name, Op: ev.Op, Source: SourceConfig}, true
	}

	source := w.sourceOf(name)
	if source == "" {
		// Siblings of the config file in its directory.
		return Event{}, false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			w.addDirsRecursive(name)
		}
	}
	return Event{Path: name, Op: ev.Op, Source: source}, true
}

func (w *Watcher) sourceOf(name string) string {
	for root, source := range w.roots {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return source
		}
	}
	return ""
}

func (w *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && shouldIgnoreEvent(path) {
				return filepath.SkipDir
			}
			if err := w.fs.Add(path); err != nil {
				w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including .#lock files and .DS_Store.
	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}
