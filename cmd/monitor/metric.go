package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// derived metric type definitions and helper functions

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Knetic/govaluate"
	mapset "github.com/deckarep/golang-set/v2"
)

// Metric represents a metric (name, value) derived from aggregated event counts
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// EventCount is one event's aggregate over all monitored pids and cpus
type EventCount struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// ResultFrame represents one collection cycle's results and associated metadata
type ResultFrame struct {
	Cycle     int          `json:"cycle"`
	Timestamp float64      `json:"timestamp"`
	Period    float64      `json:"period"`
	PIDs      string       `json:"pids"`
	Events    []EventCount `json:"events"`
	Metrics   []Metric     `json:"metrics"`
}

// MetricDefinition describes how a derived metric is computed from event
// aggregates. Variables name the events the expression needs; "period" is
// implicit and carries the sampling window in seconds.
type MetricDefinition struct {
	Name       string
	Expression string
	Variables  []string
	Evaluable  *govaluate.EvaluableExpression // parse expression once, store here for use in metric evaluation
}

func metricDefinitions() []MetricDefinition {
	return []MetricDefinition{
		{Name: "ipc", Expression: "instructions / cycles", Variables: []string{"instructions", "cycles"}},
		{Name: "cache_miss_ratio", Expression: "cache_misses / cache_references", Variables: []string{"cache_misses", "cache_references"}},
		{Name: "branch_miss_ratio", Expression: "branch_misses / branch_instructions", Variables: []string{"branch_misses", "branch_instructions"}},
		{Name: "instructions_per_second", Expression: "instructions / period", Variables: []string{"instructions", "period"}},
		{Name: "frontend_stall_ratio", Expression: "stalled_cycles_frontend / cycles", Variables: []string{"stalled_cycles_frontend", "cycles"}},
		{Name: "backend_stall_ratio", Expression: "stalled_cycles_backend / cycles", Variables: []string{"stalled_cycles_backend", "cycles"}},
	}
}

// configureMetrics returns the derived metrics whose variables are all
// satisfied by the collected events, with their expressions parsed.
func configureMetrics(collectedEvents []string) ([]MetricDefinition, error) {
	available := mapset.NewSet(collectedEvents...)
	available.Add("period")
	var metrics []MetricDefinition
	for _, def := range metricDefinitions() {
		if !mapset.NewSet(def.Variables...).IsSubset(available) {
			slog.Debug("skipping metric, required events not collected", slog.String("metric", def.Name), slog.String("expression", def.Expression))
			continue
		}
		evaluable, err := govaluate.NewEvaluableExpression(def.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metric expression %q: %w", def.Expression, err)
		}
		def.Evaluable = evaluable
		metrics = append(metrics, def)
	}
	return metrics, nil
}

// computeMetrics evaluates the configured metric expressions against one
// frame's event aggregates. A metric that fails to evaluate is reported as
// NaN rather than dropped, so the frame shape is stable across cycles.
func computeMetrics(definitions []MetricDefinition, frame ResultFrame) []Metric {
	variables := make(map[string]any, len(frame.Events)+1)
	for _, event := range frame.Events {
		variables[event.Name] = float64(event.Value)
	}
	variables["period"] = frame.Period
	metrics := make([]Metric, 0, len(definitions))
	for _, def := range definitions {
		metric := Metric{Name: def.Name, Value: math.NaN()}
		result, err := def.Evaluable.Evaluate(variables)
		if err != nil {
			slog.Debug("failed to evaluate metric expression", slog.String("metric", def.Name), slog.String("error", err.Error()))
		} else if value, ok := result.(float64); ok {
			metric.Value = value
		}
		metrics = append(metrics, metric)
	}
	return metrics
}
