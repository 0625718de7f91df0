package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several servers can coexist in one
// process (tests build many).
type Collector struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	submissions     *prometheus.CounterVec
	nineBox         *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrkey_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hrkey_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hrkey_http_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrkey_evaluation_submissions_total",
				Help: "Evaluation submissions by result",
			},
			[]string{"result"},
		),
		nineBox: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrkey_ninebox_assignments_total",
				Help: "Nine-box positions assigned by scoring",
			},
			[]string{"position"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrkey_report_cache_lookups_total",
				Help: "Report cache lookups by report and outcome",
			},
			[]string{"report", "outcome"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrkey_job_runs_total",
				Help: "Background job runs by type and status",
			},
			[]string{"job_type", "status"},
		),
	}
	c.registry.MustRegister(
		c.requests,
		c.requestDuration,
		c.rateLimited,
		c.submissions,
		c.nineBox,
		c.cacheLookups,
		c.jobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Record observes one finished HTTP request. route should be the matched
// pattern, not the raw path.
func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

func (c *Collector) Submission(result string) {
	if c == nil {
		return
	}
	c.submissions.WithLabelValues(result).Inc()
}

func (c *Collector) NineBoxAssigned(position int) {
	if c == nil {
		return
	}
	c.nineBox.WithLabelValues(strconv.Itoa(position)).Inc()
}

func (c *Collector) CacheLookup(report string, hit bool) {
	if c == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	c.cacheLookups.WithLabelValues(report, outcome).Inc()
}

func (c *Collector) JobRun(jobType, status string) {
	if c == nil {
		return
	}
	c.jobRuns.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
