package site

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdbear/internal/linkcheck"
	"git.home.luguber.info/inful/mdbear/internal/metrics"
)

// StageName identifies a build stage in reports and metrics.
type StageName string

const (
	StageLoadConfig    StageName = "load_config"
	StageLoadTheme     StageName = "load_theme"
	StagePrepareOutput StageName = "prepare_output"
	StageCopyAssets    StageName = "copy_assets"
	StageRender        StageName = "render"
	StageCheckLinks    StageName = "check_links"
)

// SkippedDocument is a section document left out of the site.
type SkippedDocument struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report describes one build.
type Report struct {
	BuildID        string                      `json:"build_id"`
	Start          time.Time                   `json:"start"`
	End            time.Time                   `json:"end"`
	PagesWritten   int                         `json:"pages_written"`
	AssetsCopied   int                         `json:"assets_copied"`
	Skipped        []SkippedDocument           `json:"skipped,omitempty"`
	Warnings       []string                    `json:"warnings,omitempty"`
	LinkWarnings   []linkcheck.Warning         `json:"link_warnings,omitempty"`
	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	Outcome        metrics.BuildOutcomeLabel   `json:"outcome"`
	Error          string                      `json:"error,omitempty"`
}

func newReport(now time.Time) *Report {
	return &Report{
		BuildID:        uuid.NewString(),
		Start:          now,
		StageDurations: make(map[StageName]time.Duration),
	}
}

func (r *Report) skip(path string, err error) {
	r.Skipped = append(r.Skipped, SkippedDocument{Path: path, Reason: err.Error()})
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Duration is the wall time between start and end.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("pages=%d assets=%d skipped=%d warnings=%d link_warnings=%d duration=%s outcome=%s",
		r.PagesWritten, r.AssetsCopied, len(r.Skipped), len(r.Warnings), len(r.LinkWarnings),
		r.Duration().Truncate(time.Millisecond), r.Outcome)
}

// finish stamps the end time and derives the outcome from err and the recorded warnings.
func (r *Report) finish(end time.Time, err error, canceled bool) {
	r.End = end
	switch {
	case canceled:
		r.Outcome = metrics.BuildOutcomeCanceled
	case err != nil:
		r.Outcome = metrics.BuildOutcomeFailed
	case len(r.Skipped) > 0 || len(r.Warnings) > 0 || len(r.LinkWarnings) > 0:
		r.Outcome = metrics.BuildOutcomeWarning
	default:
		r.Outcome = metrics.BuildOutcomeSuccess
	}
	if err != nil {
		r.Error = err.Error()
	}
}
