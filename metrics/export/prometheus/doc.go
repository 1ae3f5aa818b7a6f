// Package prometheus provides Prometheus collectors for authflows metrics.
//
// [NewPrometheusExporter] accepts an [authflows.Engine] and exposes an [http.Handler]
// that renders all authflows counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authflows_*_total; the single histogram is
// authflows_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
