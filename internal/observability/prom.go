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

	// roster store
	MutationsTotal *prometheus.CounterVec
	RosterSize     prometheus.Gauge

	// loader + source
	LoadDuration        *prometheus.HistogramVec
	SourceFetchDuration *prometheus.HistogramVec
	SourceErrorsTotal   *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userroster",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "userroster",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "userroster",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userroster",
				Subsystem: "roster",
				Name:      "mutations_total",
				Help:      "Roster operations by name and result.",
			},
			[]string{"op", "result"}, // result=ok|error
		),
		RosterSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "userroster",
				Subsystem: "roster",
				Name:      "users",
				Help:      "Number of users currently in the roster.",
			},
		),
		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "userroster",
				Subsystem: "loader",
				Name:      "duration_seconds",
				Help:      "Startup load duration by result",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"result"}, // result=ready|failed
		),
		SourceFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "userroster",
				Subsystem: "source",
				Name:      "fetch_duration_seconds",
				Help:      "Roster source fetch latency per attempt",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"source", "status"},
		),
		SourceErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userroster",
				Subsystem: "source",
				Name:      "errors_total",
				Help:      "Roster source errors by source and class.",
			},
			[]string{"source", "class"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "userroster",
				Subsystem: "source",
				Name:      "cache_lookups_total",
				Help:      "Upstream response cache lookups by result.",
			},
			[]string{"result"}, // result=hit|miss|error
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.MutationsTotal, p.RosterSize,
		p.LoadDuration, p.SourceFetchDuration, p.SourceErrorsTotal, p.CacheLookups,
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

func (p *Prom) ObserveMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.MutationsTotal.WithLabelValues(op, result).Inc()
}

func (p *Prom) SetRosterSize(n int) {
	p.RosterSize.Set(float64(n))
}

func (p *Prom) ObserveLoad(result string, d time.Duration) {
	p.LoadDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (p *Prom) ObserveCacheLookup(result string) {
	p.CacheLookups.WithLabelValues(result).Inc()
}
