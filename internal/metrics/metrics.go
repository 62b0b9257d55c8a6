package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vera_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "vera_http_request_duration_seconds",
			Help: "HTTP request latency",
		},
		[]string{"method", "path"},
	)

	OCRDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "vera_ocr_page_duration_seconds",
			Help: "OCR page processing duration",
		},
		[]string{"status"},
	)

	SummaryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "vera_summary_duration_seconds",
			Help: "Summary generation duration",
		},
		[]string{"scope"},
	)

	SummaryLLMFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vera_summary_llm_failures_total",
			Help: "LLM summary failures",
		},
		[]string{"reason"},
	)
)
