package metrics

import (
	"sync"
	"time"
)

// Metric is a single counter or gauge with metadata.
type Metric struct {
	Name        string            `json:"name"`
	Value       float64           `json:"value"`
	Labels      map[string]string `json:"labels,omitempty"`
	Description string            `json:"description,omitempty"`
	LastUpdate  time.Time         `json:"last_update"`
}

// TimerMetric aggregates duration samples.
type TimerMetric struct {
	Count   int64   `json:"count"`
	Sum     float64 `json:"sum_ms"`
	Min     float64 `json:"min_ms"`
	Max     float64 `json:"max_ms"`
	Average float64 `json:"avg_ms"`
}

// Registry manages all metrics in memory.
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]*Metric
	timers    map[string]*TimerMetric
	startTime time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Metric),
		timers:    make(map[string]*TimerMetric),
		startTime: time.Now(),
	}
}

var globalRegistry = NewRegistry()

// GetRegistry returns the process-wide registry.
func GetRegistry() *Registry {
	return globalRegistry
}

func (r *Registry) IncrementCounter(name string, labels map[string]string, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.counters[name]
	if !ok {
		m = &Metric{Name: name, Labels: labels, Description: description}
		r.counters[name] = m
	}
	m.Value++
	m.LastUpdate = time.Now()
}

func (r *Registry) RecordTimer(name string, duration time.Duration) {
	ms := float64(duration.Milliseconds())

	r.mu.Lock()
	defer r.mu.Unlock()

	tm, ok := r.timers[name]
	if !ok {
		tm = &TimerMetric{Min: ms, Max: ms}
		r.timers[name] = tm
	}
	tm.Count++
	tm.Sum += ms
	if ms < tm.Min {
		tm.Min = ms
	}
	if ms > tm.Max {
		tm.Max = ms
	}
	tm.Average = tm.Sum / float64(tm.Count)
}

// Snapshot returns a copy of all metrics for serving over HTTP.
func (r *Registry) Snapshot() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counters := make(map[string]Metric, len(r.counters))
	for name, m := range r.counters {
		counters[name] = *m
	}
	timers := make(map[string]TimerMetric, len(r.timers))
	for name, tm := range r.timers {
		timers[name] = *tm
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(r.startTime).Seconds(),
		"counters":       counters,
		"timers":         timers,
	}
}

// Package-level helpers against the global registry.

func IncrementCounter(name string, labels map[string]string, description string) {
	globalRegistry.IncrementCounter(name, labels, description)
}

func RecordTimer(name string, duration time.Duration) {
	globalRegistry.RecordTimer(name, duration)
}
