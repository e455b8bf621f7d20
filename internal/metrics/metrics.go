package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	eventsAppliedCounter   *prometheus.CounterVec
	eventsIgnoredCounter   prometheus.Counter
	intentsSentCounter     *prometheus.CounterVec
	intentsRejectedCounter *prometheus.CounterVec
	connectFailedCounter   prometheus.Counter
	openChannelsGauge      prometheus.Gauge
}

func (m *metrics) EventApplied(event string) {
	m.eventsAppliedCounter.WithLabelValues(event).Inc()
}

func (m *metrics) EventIgnored() {
	m.eventsIgnoredCounter.Inc()
}

func (m *metrics) IntentSent(intent string) {
	m.intentsSentCounter.WithLabelValues(intent).Inc()
}

func (m *metrics) IntentRejected(reason string) {
	m.intentsRejectedCounter.WithLabelValues(reason).Inc()
}

func (m *metrics) ConnectFailed() {
	m.connectFailedCounter.Inc()
}

func (m *metrics) ChannelOpened() {
	m.openChannelsGauge.Inc()
}

func (m *metrics) ChannelClosed() {
	m.openChannelsGauge.Dec()
}

var Metrics = &metrics{
	eventsAppliedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearts_events_applied_total",
		Help: "Total number of inbound channel events applied to a game view",
	}, []string{"event"}),
	eventsIgnoredCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearts_events_ignored_total",
		Help: "Total number of inbound channel events with an unknown tag",
	}),
	intentsSentCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearts_intents_sent_total",
		Help: "Total number of intents sent to the server",
	}, []string{"intent"}),
	intentsRejectedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearts_intents_rejected_total",
		Help: "Total number of intents rejected locally before sending",
	}, []string{"reason"}),
	connectFailedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearts_channel_connect_failed_total",
		Help: "Total number of failed channel connects",
	}),
	openChannelsGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hearts_open_channels",
		Help: "Number of currently open game channels",
	}),
}
