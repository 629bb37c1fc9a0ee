package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "player",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	LoopTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "loop_ticks_total",
		Help:      "Total play loop iterations.",
	})

	SeeksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "seeks_total",
		Help:      "Total executed seeks by type.",
	}, []string{"type"})

	PlaybackRestartsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "playback_restarts_total",
		Help:      "Total completed playback restarts (load or seek).",
	})

	BufferingEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "buffering_events_total",
		Help:      "Total times playback paused for cache refill.",
	})

	CacheBufferPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "player",
		Name:      "cache_buffer_percent",
		Help:      "Buffering progress toward the resume threshold, 100 when not buffering.",
	})

	PlaybackPositionSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "player",
		Name:      "playback_position_seconds",
		Help:      "Current playback position on the timeline.",
	})

	EventsBroadcastTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "events_broadcast_total",
		Help:      "Core events broadcast to WebSocket clients by type.",
	}, []string{"event"})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "commands_total",
		Help:      "Input commands accepted by name.",
	}, []string{"name"})

	SourceReadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "player",
		Name:      "source_read_bytes_total",
		Help:      "Bytes read from media sources.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LoopTicksTotal,
		SeeksTotal,
		PlaybackRestartsTotal,
		BufferingEventsTotal,
		CacheBufferPercent,
		PlaybackPositionSeconds,
		EventsBroadcastTotal,
		CommandsTotal,
		SourceReadBytesTotal,
	)
}
