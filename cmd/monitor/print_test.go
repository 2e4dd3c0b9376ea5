package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleFrame() ResultFrame {
	return ResultFrame{
		Cycle:     1,
		Timestamp: 1.5,
		Period:    1,
		PIDs:      "100,200",
		Events: []EventCount{
			{Name: "instructions", Value: 2000},
			{Name: "cycles", Value: 1000},
		},
		Metrics: []Metric{
			{Name: "ipc", Value: 2.0},
			{Name: "cache_miss_ratio", Value: math.NaN()},
		},
	}
}

func TestFrameCSVHeader(t *testing.T) {
	header := frameCSVHeader(exampleFrame())
	assert.Equal(t, "cycle,timestamp,pids,instructions,cycles,ipc,cache_miss_ratio", header)
}

func TestFrameCSVRow(t *testing.T) {
	row := frameCSVRow(exampleFrame())
	// the unevaluable metric leaves its field empty
	assert.Equal(t, `1,1.500,"100,200",2000,1000,2.000000,`, row)
}

func TestFilterFrameReplacesUnmarshalableValues(t *testing.T) {
	frame := exampleFrame()
	frame.Metrics = append(frame.Metrics, Metric{Name: "inf_metric", Value: math.Inf(1)})

	filtered := filterFrame(frame)
	require.Len(t, filtered.Metrics, 3)
	assert.Equal(t, 2.0, filtered.Metrics[0].Value)
	assert.Equal(t, -1.0, filtered.Metrics[1].Value)
	assert.Equal(t, -1.0, filtered.Metrics[2].Value)

	// the filtered frame must marshal cleanly
	jsonBytes, err := json.Marshal(filtered)
	require.NoError(t, err)

	var decoded ResultFrame
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, frame.Cycle, decoded.Cycle)
	assert.Equal(t, frame.Events, decoded.Events)
}

func TestFilterFrameDoesNotMutateInput(t *testing.T) {
	frame := exampleFrame()
	_ = filterFrame(frame)
	assert.True(t, math.IsNaN(frame.Metrics[1].Value))
}

func TestPrintFrameUnknownFormat(t *testing.T) {
	err := printFrame(exampleFrame(), "xml")
	assert.Error(t, err)
}
