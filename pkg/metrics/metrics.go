package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus instrumentation of the identity core.
type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	loginCnt    *prometheus.CounterVec
	registerCnt prometheus.Counter
	rotationCnt prometheus.Counter
	reuseCnt    prometheus.Counter
	denyCnt     *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds"}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	loginCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "login_total"}, []string{"outcome"})
	registerCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "register_total"})
	rotationCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "token_rotations_total"})
	reuseCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "token_reuse_incidents_total"})
	denyCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "access_denied_total"}, []string{"reason"})
	r.MustRegister(loginCnt, registerCnt, rotationCnt, reuseCnt, denyCnt)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		loginCnt:    loginCnt,
		registerCnt: registerCnt,
		rotationCnt: rotationCnt,
		reuseCnt:    reuseCnt,
		denyCnt:     denyCnt,
	}
}

func (m *Metrics) Login(outcome string) {
	m.loginCnt.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Register() {
	m.registerCnt.Inc()
}

func (m *Metrics) TokenRotation() {
	m.rotationCnt.Inc()
}

func (m *Metrics) TokenReuse() {
	m.reuseCnt.Inc()
}

func (m *Metrics) AccessDenied(reason string) {
	m.denyCnt.WithLabelValues(reason).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
