package preview

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.md~"))
	require.True(t, shouldIgnoreEvent("/tmp/.DS_Store"))
	require.True(t, shouldIgnoreEvent("/tmp/4913"))
	require.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok)
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no watch event")
		return Event{}
	}
}

func TestWatcher_ReportsSourcesAndIgnoresOutput(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "content")
	themeDir := filepath.Join(root, "theme")
	out := filepath.Join(root, "public")
	for _, d := range []string{content, themeDir, out} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
	cfgFile := filepath.Join(root, "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("x"), 0o644))

	w, err := NewWatcher(WatchOptions{ContentDir: content, ThemeDir: themeDir, ConfigFile: cfgFile, Ignore: []string{out}}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("out"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(content, ".swap"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(content, "post.md"), []byte("x"), 0o644))
	ev := nextEvent(t, w)
	require.Equal(t, SourceContent, ev.Source)
	require.Equal(t, filepath.Join(content, "post.md"), ev.Path)

	// Drain any follow-up write events for post.md.
	drain(w)

	require.NoError(t, os.WriteFile(cfgFile, []byte("y"), 0o644))
	ev = nextEvent(t, w)
	require.Equal(t, SourceConfig, ev.Source)
	drain(w)

	sub := filepath.Join(themeDir, "partials")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	ev = nextEvent(t, w)
	require.Equal(t, SourceTheme, ev.Source)
	drain(w)

	// Directories created after start are watched too.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(sub, "head.html"), []byte("h"), 0o644)
		select {
		case ev := <-w.Events():
			return ev.Path == filepath.Join(sub, "head.html")
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func drain(w *Watcher) {
	for {
		select {
		case <-w.Events():
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}
