// Package session implements a bounded measurement window over a matrix of
// (process, cpu) targets and hardware events. One Run opens a counter per
// (pid, cpu, event) combination, arms all counters, sleeps for the sampling
// period, reads the counters back, corrects each reading for kernel
// time-multiplexing, and folds the readings into one aggregate per event.
package session

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// DefaultCapacity bounds the number of counters one Run may open. Each
// counter holds an open file descriptor for the duration of the window, so
// the bound reflects file-descriptor practicality rather than a kernel limit.
const DefaultCapacity = 10000

// Session drives measurement runs against one counter backend. A Session is
// not safe for concurrent runs; external serialization is the caller's
// responsibility.
type Session struct {
	backend  CounterBackend
	capacity int
	scale    bool
	sleep    func(time.Duration)
}

// Option configures a Session.
type Option func(*Session)

// WithCapacity overrides the maximum number of counters one Run may open.
func WithCapacity(n int) Option {
	return func(s *Session) {
		s.capacity = n
	}
}

// WithoutScaling disables multiplexing correction. Readings are folded in as
// raw counts, which undercount whenever the kernel time-shares the physical
// counters. Some callers prefer the uncorrected value.
func WithoutScaling() Option {
	return func(s *Session) {
		s.scale = false
	}
}

// New returns a Session that collects counters through the given backend.
func New(backend CounterBackend, options ...Option) *Session {
	s := &Session{
		backend:  backend,
		capacity: DefaultCapacity,
		scale:    true,
		sleep:    time.Sleep,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// CapacityError is returned when the requested pid/event/cpu cross product
// exceeds the session capacity. No counter is opened on this path.
type CapacityError struct {
	Requested int
	Capacity  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested %d counters exceeds session capacity of %d", e.Requested, e.Capacity)
}

// OpenError is returned when a counter fails to open. Every counter opened
// earlier in the same run has been closed by the time the error surfaces.
type OpenError struct {
	Pid  int
	CPU  int
	Spec EventSpec
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open counter for pid %d, cpu %d, event %#x: %v", e.Pid, e.CPU, e.Spec.Config, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Run performs one measurement window and returns one aggregated value per
// event in specs, in specs order. Element m is the sum over every pid and
// every cpu in [0, cpus) of that event's scaled count observed during the
// window.
//
// If any counter fails to open, the run aborts, every counter opened so far
// is closed, and an *OpenError wrapping the OS error is returned. A counter
// that fails to read back after the window has elapsed contributes zero to
// its event's aggregate instead of failing the run; the window cannot be
// replayed, so one bad read does not discard the remaining targets' data.
//
// Run blocks for the full period; there is no mid-window cancellation.
func (s *Session) Run(pids []int, cpus int, specs []EventSpec, period time.Duration) ([]uint64, error) {
	if len(pids) == 0 {
		return nil, fmt.Errorf("no pids to monitor")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no events to count")
	}
	if cpus < 1 {
		return nil, fmt.Errorf("invalid cpu count: %d", cpus)
	}
	if period < 0 {
		return nil, fmt.Errorf("invalid sampling period: %v", period)
	}
	requested := len(pids) * len(specs) * cpus
	if requested > s.capacity {
		return nil, &CapacityError{Requested: requested, Capacity: s.capacity}
	}

	// open one counter per (pid, event, cpu). The nesting order determines
	// which result slot a handle folds into during the read phase below.
	handles := make([]Handle, 0, requested)
	for _, pid := range pids {
		for _, spec := range specs {
			for cpu := 0; cpu < cpus; cpu++ {
				handle, err := s.backend.Open(pid, cpu, spec)
				if err != nil {
					for _, opened := range handles {
						if closeErr := s.backend.Close(opened); closeErr != nil {
							slog.Debug("failed to close counter while aborting run", slog.String("error", closeErr.Error()))
						}
					}
					return nil, &OpenError{Pid: pid, CPU: cpu, Spec: spec, Err: err}
				}
				handles = append(handles, handle)
			}
		}
	}

	// arm all counters. Enabling is per-handle; the counter subsystem offers
	// no cross-handle atomicity and none is needed for a window this coarse.
	for _, handle := range handles {
		if err := s.backend.Reset(handle); err != nil {
			slog.Debug("failed to reset counter", slog.String("error", err.Error()))
		}
		if err := s.backend.Enable(handle); err != nil {
			slog.Debug("failed to enable counter", slog.String("error", err.Error()))
		}
	}

	s.sleep(period)

	results := make([]uint64, len(specs))
	degraded := 0
	next := 0
	for range pids {
		for m := range specs {
			for cpu := 0; cpu < cpus; cpu++ {
				handle := handles[next]
				next++
				if err := s.backend.Disable(handle); err != nil {
					slog.Debug("failed to disable counter", slog.String("error", err.Error()))
				}
				reading, err := s.backend.Read(handle)
				if err != nil {
					// the window has already elapsed, so zero this target's
					// contribution rather than fail the run
					degraded++
					slog.Debug("failed to read counter", slog.String("error", err.Error()))
				} else {
					results[m] += s.scaled(reading)
				}
				if err := s.backend.Close(handle); err != nil {
					slog.Debug("failed to close counter", slog.String("error", err.Error()))
				}
			}
		}
	}
	if degraded > 0 {
		slog.Warn("some counters failed to read back, their contributions are zero",
			slog.Int("failed", degraded), slog.Int("total", len(handles)))
	}
	return results, nil
}

func (s *Session) scaled(reading RawReading) uint64 {
	if !s.scale {
		return reading.Value
	}
	return scaledValue(reading)
}

// scaledValue corrects a reading for time-multiplexing. When the kernel
// schedules an event on a physical counter for only part of the window, the
// raw value is inflated by time_enabled/time_running to estimate what the
// count would have been had the event run the whole window. The division must
// be fractional; integer division truncates to 0 or 1 and silently disables
// scaling.
func scaledValue(reading RawReading) uint64 {
	if reading.TimeEnabled == 0 || reading.TimeRunning == 0 {
		// the event never ran; never report an unscaled, misleading count
		return 0
	}
	if reading.TimeEnabled == reading.TimeRunning {
		return reading.Value
	}
	rate := float64(reading.TimeEnabled) / float64(reading.TimeRunning)
	return uint64(math.Round(float64(reading.Value) * rate))
}
