package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSummary(t *testing.T) {
	frames := []ResultFrame{
		{
			Cycle:     1,
			Timestamp: 1.0,
			Period:    1,
			PIDs:      "100",
			Events:    []EventCount{{Name: "instructions", Value: 2000}, {Name: "cycles", Value: 1000}},
			Metrics:   []Metric{{Name: "ipc", Value: 2.0}},
		},
		{
			Cycle:     2,
			Timestamp: 2.0,
			Period:    1,
			PIDs:      "100",
			Events:    []EventCount{{Name: "instructions", Value: 3000}, {Name: "cycles", Value: 1000}},
			Metrics:   []Metric{{Name: "ipc", Value: math.NaN()}},
		},
	}
	path := filepath.Join(t.TempDir(), summaryFileName)
	require.NoError(t, writeSummary(path, frames))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(summarySheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + one row per cycle

	assert.Equal(t, []string{"cycle", "timestamp", "pids", "instructions", "cycles", "ipc"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2000", rows[1][3])
	assert.Equal(t, "2", rows[1][5])
	// the unevaluable metric leaves its cell empty; trailing empty cells are
	// not returned by GetRows
	assert.Equal(t, "3000", rows[2][3])
	assert.LessOrEqual(t, len(rows[2]), 5)
}

func TestWriteSummaryNoFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), summaryFileName)
	assert.Error(t, writeSummary(path, nil))
}
