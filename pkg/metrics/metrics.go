// Package metrics counts what the searches do and writes it out in the Prometheus text format
package metrics

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nektos/stv/pkg/manipulation"
	"github.com/nektos/stv/pkg/model"
)

const namespace = "stv"

// Recorder is a manipulation.Observer backed by its own registry
type Recorder struct {
	registry *prometheus.Registry
	names    func(model.Candidate) string

	rounds    prometheus.Gauge
	scenarios prometheus.Counter
	pruned    *prometheus.CounterVec
	trials    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ manipulation.Observer = (*Recorder)(nil)

// NewRecorder initializes the counters. names labels candidates, nil uses the numeric id.
func NewRecorder(names func(model.Candidate) string) *Recorder {
	if names == nil {
		names = func(c model.Candidate) string {
			return strconv.Itoa(int(c))
		}
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		names:    names,
		rounds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "rounds",
				Help:      "Number of rounds the last tally took",
			},
		),
		scenarios: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tree",
				Name:      "scenarios_total",
				Help:      "Leaves reached by the constraint tree search",
			},
		),
		pruned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tree",
				Name:      "pruned_total",
				Help:      "Branches dropped because their constraints cannot hold",
			},
			[]string{"depth"},
		),
		trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "coalition",
				Name:      "trials_total",
				Help:      "Replacement ballots tallied by the coalition search",
			},
			[]string{"target", "deposed"},
		),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
			[]string{"search"},
		),
	}

	r.registry.MustRegister(r.rounds, r.scenarios, r.pruned, r.trials, r.duration)
	return r
}

// ScenarioFound counts a tree leaf
func (r *Recorder) ScenarioFound(*manipulation.Scenario) {
	r.scenarios.Inc()
}

// BranchPruned counts a dropped branch by depth
func (r *Recorder) BranchPruned(depth int) {
	r.pruned.With(prometheus.Labels{"depth": strconv.Itoa(depth)}).Inc()
}

// TrialRun counts one coalition trial
func (r *Recorder) TrialRun(target model.Candidate, _ int, deposed bool) {
	r.trials.With(prometheus.Labels{"target": r.names(target), "deposed": strconv.FormatBool(deposed)}).Inc()
}

// SetRounds records the round count of a tally
func (r *Recorder) SetRounds(n int) {
	r.rounds.Set(float64(n))
}

// TimeSince observes how long the named search took
func (r *Recorder) TimeSince(search string, start time.Time) {
	elapsed := float64(time.Since(start)) / float64(time.Second)
	r.duration.With(prometheus.Labels{"search": search}).Observe(elapsed)
}

// WriteToTextfile writes every metric to path, for the node exporter textfile collector
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "unable to write metrics to '%s'", path)
	}
	return nil
}
