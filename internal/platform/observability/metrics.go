package observability

import (
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the contest-judging processes export.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	VoteSetsTotal       *prometheus.CounterVec
	ContestClosures     *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	OutboxPublished     prometheus.Counter
	RankingCacheLookups *prometheus.CounterVec
}

func metricLabels(service string) prometheus.Labels {
	if service == "" {
		service = "inkwell"
	}
	instance := os.Getenv("INSTANCE_ID")
	if instance == "" {
		instance, _ = os.Hostname()
	}
	return prometheus.Labels{"service": service, "instance": instance}
}

// NewMetrics registers the collectors on reg with constant service and
// instance labels. A nil reg uses the default registerer.
func NewMetrics(service string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	wrapped := prometheus.WrapRegistererWith(metricLabels(service), reg)

	m := &Metrics{
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		VoteSetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contest_vote_sets_total",
				Help: "Vote sets accepted, by judge kind and whether a previous set was replaced",
			},
			[]string{"judge_kind", "replaced"},
		),
		ContestClosures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contest_closures_total",
				Help: "Contests moved to closed with a frozen ranking, by trigger",
			},
			[]string{"trigger"},
		),
		StatusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contest_status_transitions_total",
				Help: "Applied contest status transitions",
			},
			[]string{"from", "to"},
		),
		OutboxPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contest_outbox_published_total",
				Help: "Outbox rows published to the event bus",
			},
		),
		RankingCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contest_ranking_cache_lookups_total",
				Help: "Frozen ranking cache lookups by result",
			},
			[]string{"result"},
		),
	}
	wrapped.MustRegister(
		m.HTTPRequestDuration,
		m.HTTPRequestsTotal,
		m.VoteSetsTotal,
		m.ContestClosures,
		m.StatusTransitions,
		m.OutboxPublished,
		m.RankingCacheLookups,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method string, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

func (m *Metrics) VoteSetCast(judgeKind string, replaced bool) {
	if m == nil {
		return
	}
	m.VoteSetsTotal.WithLabelValues(judgeKind, strconv.FormatBool(replaced)).Inc()
}

func (m *Metrics) ContestClosed(trigger string) {
	if m == nil {
		return
	}
	m.ContestClosures.WithLabelValues(trigger).Inc()
}

func (m *Metrics) StatusChanged(from string, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) OutboxRowPublished() {
	if m == nil {
		return
	}
	m.OutboxPublished.Inc()
}

func (m *Metrics) RankingCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RankingCacheLookups.WithLabelValues(result).Inc()
}
