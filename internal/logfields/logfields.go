package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySection    = "section"
	KeyPage       = "page"
	KeyURL        = "url"
	KeyNavKind    = "nav_kind"
	KeyOp         = "op"
	KeyOutcome    = "outcome"
	KeyCount      = "count"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Page(slug string) slog.Attr      { return slog.String(KeyPage, slug) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func NavKind(k string) slog.Attr      { return slog.String(KeyNavKind, k) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Duration reports d in milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
