package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	p, err := kong.New(cli, kong.Name("mdbear"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	return p
}

func TestParseServeFlags(t *testing.T) {
	var cli CLI
	ctx, err := newParser(t, &cli).Parse([]string{"serve", "-p", "8080", "--no-live-reload", "--debounce", "250ms", "--open"})
	require.NoError(t, err)
	require.Equal(t, "serve", ctx.Command())
	require.Equal(t, 8080, cli.Serve.Port)
	require.True(t, cli.Serve.NoLiveReload)
	require.Equal(t, "250ms", cli.Serve.Debounce)
	require.True(t, cli.Serve.Open)
	require.Equal(t, "config.toml", filepath.Base(cli.Serve.Config))
}

func TestParseBuildDefaults(t *testing.T) {
	var cli CLI
	ctx, err := newParser(t, &cli).Parse([]string{"build"})
	require.NoError(t, err)
	require.Equal(t, "build", ctx.Command())
	require.Equal(t, "config.toml", filepath.Base(cli.Build.Config))
	require.False(t, cli.Build.CheckLinks)
}

func TestParseInitRequiresName(t *testing.T) {
	var cli CLI
	_, err := newParser(t, &cli).Parse([]string{"init"})
	require.Error(t, err)
}

func TestInitAndBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, (&InitCmd{Name: dir}).Run(nil, nil))

	cmd := &BuildCmd{Config: filepath.Join(dir, "config.toml")}
	require.NoError(t, cmd.Run(&Global{Logger: slog.New(slog.DiscardHandler)}, nil))

	_, err := os.Stat(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
}

func TestServeRejectsBadDebounce(t *testing.T) {
	err := (&ServeCmd{Config: "config.toml", Debounce: "soon"}).Run(nil, nil)
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv("MDBEAR_LOG_LEVEL", "")
	require.Equal(t, slog.LevelInfo, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))
	t.Setenv("MDBEAR_LOG_LEVEL", "WARN")
	require.Equal(t, slog.LevelWarn, parseLogLevel(false))
	t.Setenv("MDBEAR_LOG_LEVEL", "debug")
	require.Equal(t, slog.LevelDebug, parseLogLevel(false))
}
