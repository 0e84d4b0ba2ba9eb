package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	SeatOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_seat_operations_total",
			Help: "Reserve and release calls against the capacity ledger by outcome",
		},
		[]string{"operation", "outcome"},
	)
	CancellationFees = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cancellation_fees_collected_total",
			Help: "Sum of cancellation fees in the smallest currency unit",
		},
	)
)

// Outcome maps a ledger error onto a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSlotNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrSlotNotOpen):
		return "not_open"
	case errors.Is(err, domain.ErrInsufficientCapacity):
		return "insufficient_capacity"
	case errors.Is(err, domain.ErrOverRelease):
		return "over_release"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func ObserveReserve(err error) {
	SeatOperations.WithLabelValues("reserve", Outcome(err)).Inc()
}

func ObserveRelease(err error) {
	SeatOperations.WithLabelValues("release", Outcome(err)).Inc()
}

func ObserveCancellationFee(fee int64) {
	if fee > 0 {
		CancellationFees.Add(float64(fee))
	}
}

// Middleware records request counts and latency per route template.
func Middleware(metricsPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
