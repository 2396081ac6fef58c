// Package metrics exposes synchronized indicator state to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"motionberry-cli/internal/status"
)

// StatusSource is what the collector reads on every scrape.
type StatusSource interface {
	Board() *status.Board
	Connected() bool
	Received() uint64
	Dropped() uint64
}

var (
	upDesc = prometheus.NewDesc(
		"motionberry_stream_connected", "Whether the status stream is currently connected.", nil, nil,
	)
	updatesDesc = prometheus.NewDesc(
		"motionberry_status_updates_total", "Status messages applied since start.", nil, nil,
	)
	droppedDesc = prometheus.NewDesc(
		"motionberry_status_updates_dropped_total", "Status updates dropped because no reader kept up.", nil, nil,
	)
	knownDesc = prometheus.NewDesc(
		"motionberry_status_known", "Whether a value has been received for the category.", []string{"category"}, nil,
	)
	stateDescs = map[status.Category]*prometheus.Desc{
		status.CategoryCamera: prometheus.NewDesc(
			"motionberry_camera_running", "Camera running (1) or stopped (0).", nil, nil,
		),
		status.CategoryRecording: prometheus.NewDesc(
			"motionberry_recording", "Recording in progress (1) or idle (0).", nil, nil,
		),
		status.CategoryMotion: prometheus.NewDesc(
			"motionberry_motion_detecting", "Motion detection enabled (1) or disabled (0).", nil, nil,
		),
	}
)

// StatusCollector reports the board of a status synchronizer. Categories
// without indicators or without a received value are not exported.
type StatusCollector struct {
	Source StatusSource
}

func NewStatusCollector(src StatusSource) *StatusCollector {
	return &StatusCollector{Source: src}
}

func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- updatesDesc
	ch <- droppedDesc
	ch <- knownDesc
	for _, cat := range status.Categories {
		ch <- stateDescs[cat]
	}
}

func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, boolValue(c.Source.Connected()))
	ch <- prometheus.MustNewConstMetric(updatesDesc, prometheus.CounterValue, float64(c.Source.Received()))
	ch <- prometheus.MustNewConstMetric(droppedDesc, prometheus.CounterValue, float64(c.Source.Dropped()))

	for _, st := range c.Source.Board().Snapshot() {
		ch <- prometheus.MustNewConstMetric(knownDesc, prometheus.GaugeValue, boolValue(st.Known), string(st.Category))
		if !st.Known {
			continue
		}
		desc, ok := stateDescs[st.Category]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, boolValue(st.On))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
