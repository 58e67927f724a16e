package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "detectbot"

// Prometheus records pipeline activity on its own registry.
type Prometheus struct {
	registry          *prometheus.Registry
	mentionsTotal     *prometheus.CounterVec
	failuresTotal     *prometheus.CounterVec
	detectionDuration prometheus.Histogram
	cyclesTotal       prometheus.Counter
	cycleMentions     prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		mentionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mentions_total",
				Help:      "Mentions handled, by outcome",
			},
			[]string{"outcome"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mention_failures_total",
				Help:      "Mentions that failed, by error kind",
			},
			[]string{"kind"},
		),
		detectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "detection_duration_seconds",
				Help:      "Time spent downloading a photo and running detection",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		cyclesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Completed polling cycles",
			},
		),
		cycleMentions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cycle_mentions",
				Help:      "Mentions fetched in the last completed cycle",
			},
		),
	}

	p.registry.MustRegister(p.mentionsTotal, p.failuresTotal, p.detectionDuration, p.cyclesTotal, p.cycleMentions)

	return p
}

func (p *Prometheus) MentionHandled(outcome string) {
	p.mentionsTotal.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) MentionFailed(kind string) {
	p.failuresTotal.WithLabelValues(kind).Inc()
}

func (p *Prometheus) DetectionObserved(d time.Duration) {
	p.detectionDuration.Observe(d.Seconds())
}

func (p *Prometheus) CycleCompleted(mentions int) {
	p.cyclesTotal.Inc()
	p.cycleMentions.Set(float64(mentions))
}

// Handler exposes the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
