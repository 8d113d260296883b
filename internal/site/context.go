package site

import (
	"log/slog"

	"git.home.luguber.info/inful/mdbear/internal/config"
	"git.home.luguber.info/inful/mdbear/internal/page"
	"git.home.luguber.info/inful/mdbear/internal/theme"
)

// BuildContext carries everything one build needs. It is created once per build,
// passed by value and never modified.
type BuildContext struct {
	cfg         *config.Config
	contentRoot string
	themeRoot   string
	outputRoot  string
	renderer    theme.Renderer
	loader      *page.Loader
	logger      *slog.Logger
}

// NewBuildContext resolves the directories of cfg and binds the collaborators.
func NewBuildContext(cfg *config.Config, renderer theme.Renderer, loader *page.Loader, logger *slog.Logger) BuildContext {
	if logger == nil {
		logger = slog.Default()
	}
	return BuildContext{
		cfg:         cfg,
		contentRoot: cfg.ContentPath(),
		themeRoot:   cfg.ThemePath(),
		outputRoot:  cfg.OutputPath(),
		renderer:    renderer,
		loader:      loader,
		logger:      logger,
	}
}
