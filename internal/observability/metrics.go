package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesSampled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "frames_sampled_total",
		Help:      "Total number of frames sampled from camera sources",
	}, []string{"camera"})

	MotionTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "motion_triggers_total",
		Help:      "Total number of motion-gate triggers",
	}, []string{"camera"})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "decisions_total",
		Help:      "Total number of completed decision cycles by outcome",
	}, []string{"camera", "outcome"})

	RecognitionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gatekeeper",
		Name:      "recognition_duration_seconds",
		Help:      "Duration of calls to the external recognition service",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	RecognitionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "recognition_failures_total",
		Help:      "Total number of failed recognition service calls",
	})

	LookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "lookup_failures_total",
		Help:      "Total number of failed account directory lookups",
	})

	SinkWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "sink_write_failures_total",
		Help:      "Total number of failed event sink appends",
	}, []string{"kind"})

	ActiveCameras = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatekeeper",
		Name:      "active_cameras",
		Help:      "Number of cameras currently being sampled",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatekeeper",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gatekeeper",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
