package site

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/mdbear/internal/config"
	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/linkcheck"
	"git.home.luguber.info/inful/mdbear/internal/logfields"
	"git.home.luguber.info/inful/mdbear/internal/markdown"
	"git.home.luguber.info/inful/mdbear/internal/metrics"
	"git.home.luguber.info/inful/mdbear/internal/page"
	"git.home.luguber.info/inful/mdbear/internal/theme"
)

// Options tune a build. The zero value is usable.
type Options struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// CheckLinks runs the link check even when the config does not ask for it.
	CheckLinks bool
	// Now is the clock used for report timestamps.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Recorder == nil {
		o.Recorder = metrics.NoopRecorder{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Build produces the site described by the config file at configPath.
//
// The report is always returned, also on failure, so callers can record the
// attempt. A config error leaves the output directory untouched.
func Build(ctx context.Context, configPath string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	report := newReport(opts.Now())
	log := opts.Logger.With(logfields.BuildID(report.BuildID))
	opts.Logger = log
	log.Debug("Build started", logfields.Path(configPath))

	err := run(ctx, configPath, opts, report, log)
	report.finish(opts.Now(), err, stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))

	rec := opts.Recorder
	rec.ObserveBuildDuration(report.Duration())
	rec.IncBuildOutcome(report.Outcome)
	rec.AddPagesWritten(report.PagesWritten)
	rec.AddDocumentsSkipped(len(report.Skipped))
	rec.AddLinkWarnings(len(report.LinkWarnings))

	if err != nil {
		log.Error("Build failed", logfields.Outcome(string(report.Outcome)), logfields.Error(err))
		return report, err
	}
	log.Info("Build completed",
		logfields.Outcome(string(report.Outcome)),
		logfields.Count(report.PagesWritten),
		logfields.Duration(report.Duration()))
	return report, nil
}

func run(ctx context.Context, configPath string, opts Options, report *Report, log *slog.Logger) error {
	var cfg *config.Config
	if err := stage(ctx, StageLoadConfig, opts, report, func() error {
		var err error
		cfg, err = config.Load(configPath)
		return err
	}); err != nil {
		return err
	}

	var th *theme.Theme
	if err := stage(ctx, StageLoadTheme, opts, report, func() error {
		var err error
		th, err = theme.Load(cfg.ThemePath())
		return err
	}); err != nil {
		return err
	}

	md := markdown.New(markdown.Options{HardWraps: cfg.Build.HardWraps, Unsafe: true})
	bc := NewBuildContext(cfg, th, page.NewLoader(md, log), log)

	if err := stage(ctx, StagePrepareOutput, opts, report, func() error {
		return resetDir(bc.outputRoot)
	}); err != nil {
		return err
	}

	if err := stage(ctx, StageCopyAssets, opts, report, func() error {
		for _, c := range []struct{ src, dst string }{
			{filepath.Join(bc.contentRoot, "assets"), filepath.Join(bc.outputRoot, "assets")},
			{filepath.Join(bc.themeRoot, "fonts"), filepath.Join(bc.outputRoot, "fonts")},
		} {
			n, err := CopyDir(c.src, c.dst)
			report.AssetsCopied += n
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := stage(ctx, StageRender, opts, report, func() error {
		return Resolve(ctx, bc, report)
	}); err != nil {
		return err
	}

	if cfg.Build.CheckLinks || opts.CheckLinks {
		if err := stage(ctx, StageCheckLinks, opts, report, func() error {
			warnings, err := linkcheck.Check(ctx, bc.outputRoot)
			report.LinkWarnings = warnings
			for _, w := range warnings {
				log.Warn("Broken link", logfields.Page(w.Page), logfields.URL(w.Link))
			}
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// stage times fn and records its result on the report and the recorder.
func stage(ctx context.Context, name StageName, opts Options, report *Report, fn func() error) error {
	if err := ctx.Err(); err != nil {
		opts.Recorder.IncStageResult(string(name), metrics.ResultCanceled)
		return errors.WrapError(err, errors.CategoryBuild, "build canceled").
			WithContext("stage", string(name)).Build()
	}
	start := opts.Now()
	err := fn()
	d := opts.Now().Sub(start)
	report.StageDurations[name] = d
	opts.Recorder.ObserveStageDuration(string(name), d)

	label := metrics.ResultSuccess
	switch {
	case err == nil && name == StageRender && len(report.Skipped)+len(report.Warnings) > 0:
		label = metrics.ResultWarning
	case err == nil && name == StageCheckLinks && len(report.LinkWarnings) > 0:
		label = metrics.ResultWarning
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		label = metrics.ResultCanceled
	case err != nil:
		label = metrics.ResultFatal
	}
	opts.Recorder.IncStageResult(string(name), label)
	opts.Logger.Debug("Stage finished", logfields.Stage(string(name)), logfields.Duration(d), logfields.Outcome(string(label)))

	if err != nil && !errors.IsClassified(err) {
		return errors.WrapError(err, errors.CategoryBuild, "build stage failed").
			Fatal().WithContext("stage", string(name)).Build()
	}
	return err
}
