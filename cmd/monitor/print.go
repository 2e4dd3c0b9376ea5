package monitor

// Copyright (C) 2021-2024 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printFrame(frame ResultFrame, format string) error {
	switch format {
	case formatTxt:
		printFrameTxt(frame)
	case formatCSV:
		printFrameCSV(frame)
	case formatJSON:
		return printFrameJSON(frame)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	return nil
}

// printFrameTxt prints one frame as an aligned table with thousands
// separators, e.g., "instructions    12,345,678".
func printFrameTxt(frame ResultFrame) {
	p := message.NewPrinter(language.English) // use printer to get commas at thousands
	fmt.Printf("--- cycle %d (t=%.1fs, pids %s) ---\n", frame.Cycle, frame.Timestamp, frame.PIDs)
	for _, event := range frame.Events {
		p.Printf("%-28s %20d\n", event.Name, event.Value)
	}
	for _, metric := range frame.Metrics {
		if math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0) {
			fmt.Printf("%-28s %20s\n", metric.Name, "-")
			continue
		}
		p.Printf("%-28s %20.3f\n", metric.Name, metric.Value)
	}
}

func printFrameCSV(frame ResultFrame) {
	if frame.Cycle == 1 {
		fmt.Println(frameCSVHeader(frame))
	}
	fmt.Println(frameCSVRow(frame))
}

func frameCSVHeader(frame ResultFrame) string {
	fields := []string{"cycle", "timestamp", "pids"}
	for _, event := range frame.Events {
		fields = append(fields, event.Name)
	}
	for _, metric := range frame.Metrics {
		fields = append(fields, metric.Name)
	}
	return strings.Join(fields, ",")
}

func frameCSVRow(frame ResultFrame) string {
	fields := []string{
		strconv.Itoa(frame.Cycle),
		strconv.FormatFloat(frame.Timestamp, 'f', 3, 64),
		"\"" + frame.PIDs + "\"",
	}
	for _, event := range frame.Events {
		fields = append(fields, strconv.FormatUint(event.Value, 10))
	}
	for _, metric := range frame.Metrics {
		if math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0) {
			fields = append(fields, "")
			continue
		}
		fields = append(fields, strconv.FormatFloat(metric.Value, 'f', 6, 64))
	}
	return strings.Join(fields, ",")
}

func printFrameJSON(frame ResultFrame) error {
	jsonBytes, err := json.Marshal(filterFrame(frame))
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}

// filterFrame replaces metric values that cannot be marshaled to JSON (NaN,
// Inf) with -1.
func filterFrame(frame ResultFrame) ResultFrame {
	filtered := frame
	filtered.Metrics = make([]Metric, 0, len(frame.Metrics))
	for _, metric := range frame.Metrics {
		if math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0) {
			filtered.Metrics = append(filtered.Metrics, Metric{Name: metric.Name, Value: -1})
		} else {
			filtered.Metrics = append(filtered.Metrics, metric)
		}
	}
	return filtered
}

// stdoutIsTerminal reports whether stdout is attached to a terminal; used to
// pick a default output format.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
