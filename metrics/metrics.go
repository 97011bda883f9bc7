package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagarc03/livestow"
)

// Metrics holds the Prometheus collectors for the relay.
// It implements livestow.Recorder.
type Metrics struct {
	// Upload metrics
	UploadsTotal   *prometheus.CounterVec // livestow_uploads_total{result}
	UploadsActive  prometheus.Gauge       // livestow_uploads_active
	ChunksAppended prometheus.Counter     // livestow_chunks_appended_total
	BytesAppended  prometheus.Counter     // livestow_bytes_appended_total

	// Stream metrics
	StreamsTotal  *prometheus.CounterVec // livestow_streams_total{outcome}
	StreamsActive prometheus.Gauge       // livestow_streams_active
	BytesStreamed prometheus.Counter     // livestow_bytes_streamed_total

	// Registry metrics
	Objects prometheus.Gauge // livestow_objects
}

var _ livestow.Recorder = (*Metrics)(nil)

// New registers the collectors on reg. Use a fresh prometheus.Registry per
// server so repeated construction in tests does not collide.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livestow_uploads_total",
			Help: "Total uploads by result (complete or interrupted)",
		}, []string{"result"}),

		UploadsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livestow_uploads_active",
			Help: "Uploads currently receiving data",
		}),

		ChunksAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "livestow_chunks_appended_total",
			Help: "Total chunks appended to live buffers",
		}),

		BytesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "livestow_bytes_appended_total",
			Help: "Total bytes appended to live buffers",
		}),

		StreamsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livestow_streams_total",
			Help: "Total finished downloads by outcome",
		}, []string{"outcome"}),

		StreamsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livestow_streams_active",
			Help: "Downloads currently tailing a buffer",
		}),

		BytesStreamed: factory.NewCounter(prometheus.CounterOpts{
			Name: "livestow_bytes_streamed_total",
			Help: "Total bytes delivered to downloads",
		}),

		Objects: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livestow_objects",
			Help: "Objects currently registered",
		}),
	}
}

func (m *Metrics) UploadStarted() {
	m.UploadsActive.Inc()
}

func (m *Metrics) ChunkAppended(n int) {
	m.ChunksAppended.Inc()
	m.BytesAppended.Add(float64(n))
}

func (m *Metrics) UploadFinished(complete bool) {
	m.UploadsActive.Dec()
	result := "interrupted"
	if complete {
		result = "complete"
	}
	m.UploadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) StreamStarted() {
	m.StreamsActive.Inc()
}

// StreamFinished records a download that ended. A stream whose consumer went
// away before termination is counted with the "pending" outcome.
func (m *Metrics) StreamFinished(bytes int64, outcome livestow.Outcome) {
	m.StreamsActive.Dec()
	m.StreamsTotal.WithLabelValues(string(outcome)).Inc()
	m.BytesStreamed.Add(float64(bytes))
}

func (m *Metrics) ObjectsChanged(count int) {
	m.Objects.Set(float64(count))
}

// Handler exposes the metrics gathered by reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
