// Package graph provides the core graph execution engine for ArcSys.
package graph

import "time"

// Option is a functional option for configuring an Engine.
//
// Example:
//
//	engine := graph.New(
//	    reducer, store, emitter,
//	    graph.WithMaxSteps(50),
//	    graph.WithDefaultNodeTimeout(5*time.Minute),
//	)
type Option func(*engineConfig)

// engineConfig collects options before they are applied to an Engine.
type engineConfig struct {
	opts Options
}

// WithMaxSteps limits workflow execution to prevent infinite loops.
//
// Default: 0 (no limit, use with caution).
//
// Loops (A → B → A) are supported; MaxSteps is the absolute backstop when a
// conditional exit is missing or misconfigured. For a workflow with one
// bounded retry cycle, set MaxSteps to fixed_steps + cycle_length ×
// (max_passes + 1).
//
// When exceeded, Run returns an EngineError with code "MAX_STEPS_EXCEEDED".
func WithMaxSteps(n int) Option {
	return func(cfg *engineConfig) {
		cfg.opts.MaxSteps = n
	}
}

// WithDefaultNodeTimeout bounds the execution time of every node.
//
// Default: 0 (no deadline). Nodes that manage their own call timeouts, as
// the pipeline stages do through the admission gate, do not need this.
func WithDefaultNodeTimeout(d time.Duration) Option {
	return func(cfg *engineConfig) {
		cfg.opts.DefaultNodeTimeout = d
	}
}

// WithMetrics enables Prometheus metrics collection.
//
// The engine records step latency per node, step failure counts, and run
// outcomes. Expose the registry via promhttp to scrape them.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewMetrics(registry)
//	engine := graph.New(reducer, store, emitter, graph.WithMetrics(metrics))
func WithMetrics(m *Metrics) Option {
	return func(cfg *engineConfig) {
		cfg.opts.Metrics = m
	}
}
