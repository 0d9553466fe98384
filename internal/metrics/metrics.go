// Package metrics expõe os coletores Prometheus do serviço.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "institute_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "institute_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	Bookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "institute_bookings_total",
		Help: "Booking attempts by result (created, conflict, rejected).",
	}, []string{"result"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "institute_status_transitions_total",
		Help: "Appointment status transitions by target status.",
	}, []string{"to"})

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "institute_reminders_sent_total",
		Help: "Reminders claimed and dispatched by the sweep.",
	})

	LoyaltyRetried = promauto.NewCounter(prometheus.CounterOpts{
		Name: "institute_loyalty_accruals_retried_total",
		Help: "Loyalty accruals applied by the retry sweep.",
	})

	InboundReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "institute_inbound_replies_total",
		Help: "Inbound message replies by parsed intent.",
	}, []string{"intent"})
)

// Middleware mede toda requisição pela rota registrada (não pela URL crua).
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
