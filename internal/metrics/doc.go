// Package metrics provides build observability hooks for mdbear.
//
// Components receive a Recorder and never check for nil: NoopRecorder is the
// default, and the serve command swaps in a PrometheusRecorder whose registry is
// exposed on /metrics.
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	report, err := site.Build(ctx, cfgPath, site.Options{Recorder: rec})
package metrics
