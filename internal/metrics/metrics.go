// Package metrics exports history activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/blockforge/internal/engine/history"
)

// Collector holds the history metrics. Every metric is labelled with the
// store name, such as "canvas" or "schema".
type Collector struct {
	commits   *prometheus.CounterVec
	undos     *prometheus.CounterVec
	redos     *prometheus.CounterVec
	gotos     *prometheus.CounterVec
	clears    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	discarded *prometheus.CounterVec

	length *prometheus.GaugeVec
	cursor *prometheus.GaugeVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	counter := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"store"})
	}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"store"})
	}

	return &Collector{
		commits:   counter("commits_total", "Snapshots appended to the history"),
		undos:     counter("undo_total", "Undo steps taken"),
		redos:     counter("redo_total", "Redo steps taken"),
		gotos:     counter("goto_total", "Jumps to an arbitrary history entry"),
		clears:    counter("clears_total", "History resets"),
		evictions: counter("evictions_total", "Oldest entries dropped to stay within the size bound"),
		discarded: counter("discarded_total", "Redo entries dropped by a new commit"),
		length:    gauge("history_length", "Entries currently retained"),
		cursor:    gauge("history_cursor", "Index of the current entry"),
	}
}

// Observe returns a change observer that records activity for store.
// Pass it to Subscribe on a history store or adapter.
func (c *Collector) Observe(store string) func(history.Change) {
	commits := c.commits.WithLabelValues(store)
	undos := c.undos.WithLabelValues(store)
	redos := c.redos.WithLabelValues(store)
	gotos := c.gotos.WithLabelValues(store)
	clears := c.clears.WithLabelValues(store)
	evictions := c.evictions.WithLabelValues(store)
	discarded := c.discarded.WithLabelValues(store)
	length := c.length.WithLabelValues(store)
	cursor := c.cursor.WithLabelValues(store)

	return func(ch history.Change) {
		switch ch.Kind {
		case history.ChangeCommit:
			commits.Inc()
			evictions.Add(float64(ch.Evicted))
			discarded.Add(float64(ch.Discarded))
		case history.ChangeUndo:
			undos.Inc()
		case history.ChangeRedo:
			redos.Inc()
		case history.ChangeGoTo:
			gotos.Inc()
		case history.ChangeClear:
			clears.Inc()
		}
		length.Set(float64(ch.Length))
		cursor.Set(float64(ch.Index))
	}
}
