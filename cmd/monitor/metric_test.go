package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(events map[string]uint64, period float64) ResultFrame {
	frame := ResultFrame{Cycle: 1, Period: period}
	for name, value := range events {
		frame.Events = append(frame.Events, EventCount{Name: name, Value: value})
	}
	return frame
}

func metricByName(t *testing.T, metrics []Metric, name string) Metric {
	for _, metric := range metrics {
		if metric.Name == name {
			return metric
		}
	}
	t.Fatalf("metric %s not found", name)
	return Metric{}
}

func TestConfigureMetricsFiltersByCollectedEvents(t *testing.T) {
	metrics, err := configureMetrics([]string{"instructions", "cycles"})
	require.NoError(t, err)
	require.Len(t, metrics, 2) // ipc and instructions_per_second
	assert.Equal(t, "ipc", metrics[0].Name)
	assert.Equal(t, "instructions_per_second", metrics[1].Name)
	for _, metric := range metrics {
		assert.NotNil(t, metric.Evaluable)
	}
}

func TestConfigureMetricsNoneSatisfied(t *testing.T) {
	metrics, err := configureMetrics([]string{"bus_cycles"})
	require.NoError(t, err)
	assert.Empty(t, metrics)
}

func TestComputeMetrics(t *testing.T) {
	metrics, err := configureMetrics([]string{"instructions", "cycles", "cache_references", "cache_misses"})
	require.NoError(t, err)

	frame := testFrame(map[string]uint64{
		"instructions":     2000,
		"cycles":           1000,
		"cache_references": 500,
		"cache_misses":     50,
	}, 2.0)
	computed := computeMetrics(metrics, frame)
	require.Len(t, computed, len(metrics))

	assert.InDelta(t, 2.0, metricByName(t, computed, "ipc").Value, 1e-9)
	assert.InDelta(t, 0.1, metricByName(t, computed, "cache_miss_ratio").Value, 1e-9)
	assert.InDelta(t, 1000.0, metricByName(t, computed, "instructions_per_second").Value, 1e-9)
}

func TestComputeMetricsDivisionByZero(t *testing.T) {
	metrics, err := configureMetrics([]string{"instructions", "cycles"})
	require.NoError(t, err)

	frame := testFrame(map[string]uint64{"instructions": 100, "cycles": 0}, 1.0)
	computed := computeMetrics(metrics, frame)
	ipc := metricByName(t, computed, "ipc").Value
	// a zeroed denominator must not fail the frame; the value is filtered at
	// output time
	assert.True(t, math.IsInf(ipc, 1) || math.IsNaN(ipc))
}

func TestMetricDefinitionExpressionsParse(t *testing.T) {
	// every built-in definition must be usable when all its events are collected
	metrics, err := configureMetrics(availableEvents())
	require.NoError(t, err)
	assert.Len(t, metrics, len(metricDefinitions()))
}
