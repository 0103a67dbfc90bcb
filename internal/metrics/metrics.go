// Package metrics holds the Prometheus collectors for the announcement
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

type Metrics struct {
	StageTotal       *prometheus.CounterVec
	AudioStoreTotal  *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StageTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebridge_stage_total",
			Help: "Pipeline stage executions by outcome",
		}, []string{"stage", "result"}),
		AudioStoreTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebridge_audio_store_total",
			Help: "Stored audio files by storage tier",
		}, []string{"tier"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicebridge_pipeline_duration_seconds",
			Help:    "End-to-end announcement creation time",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2 minutes
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebridge_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
	}
}

// RecordStage counts one stage execution.
func (m *Metrics) RecordStage(stage string, err error) {
	if m == nil {
		return
	}
	m.StageTotal.WithLabelValues(stage, resultOf(err)).Inc()
}

// RecordAudioStored counts one stored file on tier.
func (m *Metrics) RecordAudioStored(tier string) {
	if m == nil {
		return
	}
	m.AudioStoreTotal.WithLabelValues(tier).Inc()
}

// ObservePipeline records the duration of one creation request.
func (m *Metrics) ObservePipeline(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.PipelineDuration.WithLabelValues(resultOf(err)).Observe(d.Seconds())
}

// RecordHTTPRequest counts one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailed
	}
	return ResultOK
}
