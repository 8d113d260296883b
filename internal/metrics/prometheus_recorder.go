package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdbear"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	pagesWritten    prom.Counter
	docsSkipped     prom.Counter
	linkWarnings    prom.Counter
	rebuildTriggers *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_written_total",
			Help:      "HTML pages written across all builds",
		}),
		docsSkipped: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_skipped_total",
			Help:      "Section documents skipped because they failed to load",
		}),
		linkWarnings: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "link_warnings_total",
			Help:      "Relative links pointing at missing output files",
		}),
		rebuildTriggers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_triggers_total",
			Help:      "Filesystem events that triggered a rebuild, by watched root",
		}, []string{"source"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pagesWritten, pr.docsSkipped, pr.linkWarnings, pr.rebuildTriggers)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPagesWritten(n int) {
	if p == nil || p.pagesWritten == nil || n <= 0 {
		return
	}
	p.pagesWritten.Add(float64(n))
}

func (p *PrometheusRecorder) AddDocumentsSkipped(n int) {
	if p == nil || p.docsSkipped == nil || n <= 0 {
		return
	}
	p.docsSkipped.Add(float64(n))
}

func (p *PrometheusRecorder) AddLinkWarnings(n int) {
	if p == nil || p.linkWarnings == nil || n <= 0 {
		return
	}
	p.linkWarnings.Add(float64(n))
}

func (p *PrometheusRecorder) IncRebuildTrigger(source string) {
	if p == nil || p.rebuildTriggers == nil {
		return
	}
	p.rebuildTriggers.WithLabelValues(source).Inc()
}
