package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

const summaryFileName = "pgos_summary.xlsx"
const summarySheetName = "Summary"

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// writeSummary renders a multi-cycle run as one xlsx sheet: a header row,
// then one row per collection cycle with event aggregates and derived
// metrics. Metrics that could not be evaluated leave their cell empty.
func writeSummary(path string, frames []ResultFrame) error {
	if len(frames) == 0 {
		return fmt.Errorf("no collection cycles to summarize")
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheetName); err != nil {
		return err
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	col := 1
	row := 1
	header := []string{"cycle", "timestamp", "pids"}
	for _, event := range frames[0].Events {
		header = append(header, event.Name)
	}
	for _, metric := range frames[0].Metrics {
		header = append(header, metric.Name)
	}
	for _, field := range header {
		_ = f.SetCellValue(summarySheetName, cellName(col, row), field)
		col++
	}
	_ = f.SetCellStyle(summarySheetName, cellName(1, row), cellName(len(header), row), headerStyle)
	row++
	for _, frame := range frames {
		col = 1
		_ = f.SetCellValue(summarySheetName, cellName(col, row), frame.Cycle)
		col++
		_ = f.SetCellValue(summarySheetName, cellName(col, row), frame.Timestamp)
		col++
		_ = f.SetCellValue(summarySheetName, cellName(col, row), frame.PIDs)
		col++
		for _, event := range frame.Events {
			_ = f.SetCellValue(summarySheetName, cellName(col, row), event.Value)
			col++
		}
		for _, metric := range frame.Metrics {
			if !math.IsNaN(metric.Value) && !math.IsInf(metric.Value, 0) {
				_ = f.SetCellValue(summarySheetName, cellName(col, row), metric.Value)
			}
			col++
		}
		row++
	}
	return f.SaveAs(path)
}
