//go:build !linux

package session

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "github.com/pkg/errors"

// PerfBackend requires the Linux perf_event subsystem. On other platforms
// every Open fails, which makes a Run abort cleanly with an OpenError.
type PerfBackend struct{}

// NewPerfBackend returns the perf_event_open backend.
func NewPerfBackend() *PerfBackend {
	return &PerfBackend{}
}

func (b *PerfBackend) Open(pid int, cpu int, spec EventSpec) (Handle, error) {
	return -1, errors.New("hardware counters are only supported on Linux")
}

func (b *PerfBackend) Reset(h Handle) error {
	return nil
}

func (b *PerfBackend) Enable(h Handle) error {
	return nil
}

func (b *PerfBackend) Disable(h Handle) error {
	return nil
}

func (b *PerfBackend) Read(h Handle) (RawReading, error) {
	return RawReading{}, errors.New("hardware counters are only supported on Linux")
}

func (b *PerfBackend) Close(h Handle) error {
	return nil
}
