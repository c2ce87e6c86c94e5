package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	proxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svitlo",
			Name:      "proxy_requests_total",
			Help:      "Alarm proxy requests by outcome.",
		},
		[]string{"outcome"},
	)

	proxyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "svitlo",
			Name:      "proxy_upstream_seconds",
			Help:      "Time spent relaying a request to the alarm API.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	alarmChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svitlo",
			Name:      "alarm_changes_total",
			Help:      "Region alarm state changes detected by the poller.",
		},
		[]string{"state"},
	)

	alarmPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svitlo",
			Name:      "alarm_polls_total",
			Help:      "Alarm poller ticks by result.",
		},
		[]string{"result"},
	)
)

// Proxy outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeValidation     = "validation_error"
	OutcomeConfiguration  = "configuration_error"
	OutcomeTransport      = "transport_error"
	OutcomeUpstreamStatus = "upstream_status"
	OutcomeDecode         = "decode_error"
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(proxyRequests, proxyDuration, alarmChanges, alarmPolls)
	})
}

func IncProxyRequest(outcome string) {
	proxyRequests.WithLabelValues(outcome).Inc()
}

func ObserveProxyDuration(d time.Duration) {
	proxyDuration.Observe(d.Seconds())
}

func IncAlarmChange(active bool) {
	state := "cleared"
	if active {
		state = "raised"
	}
	alarmChanges.WithLabelValues(state).Inc()
}

func IncAlarmPoll(result string) {
	alarmPolls.WithLabelValues(result).Inc()
}
