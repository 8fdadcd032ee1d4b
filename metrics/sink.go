// Package metrics exposes provider activity as Prometheus counters.
package metrics

import (
	"context"
	"strconv"
	"strings"

	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/go-auth-state/activitymap"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "authstate"

// Sink is an authstate.ActivitySink backed by Prometheus counters.
type Sink struct {
	actions *prometheus.CounterVec
	syncs   *prometheus.CounterVec
}

var _ authstate.ActivitySink = (*Sink)(nil)

// NewSink creates the counters and registers them with reg. A nil reg skips
// registration.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Login, register and logout calls by outcome.",
		}, []string{"action", "outcome"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_syncs_total",
			Help:      "Upstream session emissions applied, by resulting authentication.",
		}, []string{"authenticated"}),
	}

	if reg == nil {
		return s, nil
	}

	for _, c := range []prometheus.Collector{s.actions, s.syncs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Record implements authstate.ActivitySink.
func (s *Sink) Record(_ context.Context, event authstate.ActivityEvent) error {
	if event.EventType == authstate.ActivityEventSessionSynced {
		s.syncs.WithLabelValues(strconv.FormatBool(event.Authenticated)).Inc()
		return nil
	}

	if event.Action == "" {
		return nil
	}

	s.actions.WithLabelValues(string(event.Action), activitymap.Outcome(event)).Inc()
	return nil
}

// Actions returns the action counter, mainly for tests and dashboards.
func (s *Sink) Actions() *prometheus.CounterVec {
	return s.actions
}

// Syncs returns the session sync counter.
func (s *Sink) Syncs() *prometheus.CounterVec {
	return s.syncs
}

// Totals returns every counter series keyed as name{label=value,...}, with
// labels sorted by name.
func (s *Sink) Totals() map[string]float64 {
	out := map[string]float64{}
	collectCounters(s.actions, "actions_total", out)
	collectCounters(s.syncs, "session_syncs_total", out)
	return out
}

func collectCounters(c prometheus.Collector, name string, out map[string]float64) {
	ch := make(chan prometheus.Metric)
	go func() {
		c.Collect(ch)
		close(ch)
	}()

	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		labels := make([]string, 0, len(pb.GetLabel()))
		for _, lp := range pb.GetLabel() {
			labels = append(labels, lp.GetName()+"="+lp.GetValue())
		}
		out[name+"{"+strings.Join(labels, ",")+"}"] = pb.GetCounter().GetValue()
	}
}
