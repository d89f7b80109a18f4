// Package metrics exports parse statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava12/sourcer"
	"github.com/ava12/sourcer/parser"
)

// Outcome label values.
const (
	OutcomeMatch      = "match"
	OutcomeNoMatch    = "no_match"
	OutcomeUnconsumed = "unconsumed"
	OutcomeError      = "error"
)

var (
	defaultStepBuckets  = prometheus.ExponentialBuckets(16, 4, 10)
	defaultDepthBuckets = prometheus.ExponentialBuckets(4, 2, 12)
)

// Collector is a parser.Observer counting parse runs.
type Collector struct {
	parses   *prometheus.CounterVec
	memoHits *prometheus.CounterVec
	steps    *prometheus.HistogramVec
	depth    *prometheus.HistogramVec
}

// New creates collector and registers it with reg if reg is not nil.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcer_parses_total",
				Help: "Number of parse runs by outcome.",
			},
			[]string{"mode", "outcome"},
		),
		memoHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcer_memo_hits_total",
				Help: "Number of rule calls answered from the memo table.",
			},
			[]string{"mode"},
		),
		steps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sourcer_parse_steps",
				Help:    "Number of interpreter steps per parse run.",
				Buckets: defaultStepBuckets,
			},
			[]string{"mode"},
		),
		depth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sourcer_stack_depth",
				Help:    "Largest frame stack size per parse run.",
				Buckets: defaultDepthBuckets,
			},
			[]string{"mode"},
		),
	}

	if reg != nil {
		reg.MustRegister(c)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.parses.Describe(ch)
	c.memoHits.Describe(ch)
	c.steps.Describe(ch)
	c.depth.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.parses.Collect(ch)
	c.memoHits.Collect(ch)
	c.steps.Collect(ch)
	c.depth.Collect(ch)
}

// ObserveParse implements parser.Observer.
func (c *Collector) ObserveParse(s parser.Stats) {
	mode := s.Mode.String()
	c.parses.WithLabelValues(mode, Outcome(s.Err)).Inc()
	c.memoHits.WithLabelValues(mode).Add(float64(s.MemoHits))
	c.steps.WithLabelValues(mode).Observe(float64(s.Steps))
	c.depth.WithLabelValues(mode).Observe(float64(s.MaxDepth))
}

// Outcome returns outcome label value for parse error e.
func Outcome(e error) string {
	switch {
	case e == nil:
		return OutcomeMatch
	case sourcer.HasCode(e, parser.NoMatchError):
		return OutcomeNoMatch
	case sourcer.HasCode(e, parser.UnconsumedInputError):
		return OutcomeUnconsumed
	default:
		return OutcomeError
	}
}
