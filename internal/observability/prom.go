package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Media uploads to object storage

	UploadsTotal   *prometheus.CounterVec
	UploadDuration *prometheus.HistogramVec
	UploadBytes    *prometheus.CounterVec

	// Catalog cache
	CacheResults *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reviewhub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "reviewhub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "reviewhub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "reviewhub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reviewhub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),

		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reviewhub",
				Subsystem: "media",
				Name:      "uploads_total",
				Help:      "Object storage uploads by media kind and result.",
			},
			[]string{"kind", "result"}, // result=ok|error
		),
		UploadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "reviewhub",
				Subsystem: "media",
				Name:      "upload_duration_seconds",
				Help:      "Single object upload latency by media kind and result.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"kind", "result"},
		),
		UploadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reviewhub",
				Subsystem: "media",
				Name:      "upload_bytes_total",
				Help:      "Bytes successfully written to object storage.",
			},
			[]string{"kind"},
		),

		CacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reviewhub",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Catalog cache lookups by result.",
			},
			[]string{"result"}, // result=hit|miss|error
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.UploadsTotal, p.UploadDuration, p.UploadBytes,
		p.CacheResults,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveUpload records one object upload. size is only counted on success.
func (p *Prom) ObserveUpload(kind string, size int, d time.Duration, err error) {
	if p == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	p.UploadsTotal.WithLabelValues(kind, result).Inc()
	p.UploadDuration.WithLabelValues(kind, result).Observe(d.Seconds())

	if err == nil {
		p.UploadBytes.WithLabelValues(kind).Add(float64(size))
	}
}

func (p *Prom) ObserveCache(result string) {
	if p == nil {
		return
	}
	p.CacheResults.WithLabelValues(result).Inc()
}
