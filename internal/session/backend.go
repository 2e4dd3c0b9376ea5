package session

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// EventSpec selects a hardware event to count. The session treats it as
// opaque and hands it verbatim to the backend; the caller is responsible for
// resolving event names to specs.
type EventSpec struct {
	Type   uint32 // event class, e.g., PERF_TYPE_HARDWARE
	Config uint64 // event identifier within the class
}

// Handle is an opaque reference to one armed counter, bound to exactly one
// (pid, cpu, event) triple. On Linux it is a perf event file descriptor. A
// handle is owned by one Run invocation and is never reused across runs.
type Handle int

// RawReading is a counter value as reported by the backend, along with the
// time the event was configured (TimeEnabled) and the time it was actually
// scheduled on a hardware counter (TimeRunning). The two differ when the
// kernel multiplexes more events than there are physical counters.
type RawReading struct {
	Value       uint64
	TimeEnabled uint64
	TimeRunning uint64
	ID          uint64
}

// CounterBackend abstracts the OS counter subsystem so the session logic can
// be exercised against a fake in tests. All methods map one-to-one onto the
// perf_event_open syscall and its ioctls on Linux.
type CounterBackend interface {
	// Open creates a counter for one event on one pid and cpu. The counter
	// starts disabled.
	Open(pid int, cpu int, spec EventSpec) (Handle, error)
	// Reset zeroes the counter value.
	Reset(h Handle) error
	// Enable starts counting.
	Enable(h Handle) error
	// Disable stops counting.
	Disable(h Handle) error
	// Read returns the current value and scheduling times.
	Read(h Handle) (RawReading, error)
	// Close releases the counter. Must be called exactly once per handle.
	Close(h Handle) error
}
