// Package metrics exposes relay activity as Prometheus metrics.
//
// A *Metrics value is passed to livestow.NewLiveService as its Recorder. The
// collectors are registered on the given registry and served by Handler on
// a listener separate from the object routes.
package metrics
