//go:build linux

package session

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PerfBackend collects counters through the kernel perf_event subsystem. Each
// Open issues a perf_event_open syscall for one (pid, cpu, event) triple; the
// counter is created disabled and controlled with the PERF_EVENT_IOC ioctls.
type PerfBackend struct{}

// NewPerfBackend returns the perf_event_open backend.
func NewPerfBackend() *PerfBackend {
	return &PerfBackend{}
}

func (b *PerfBackend) Open(pid int, cpu int, spec EventSpec) (Handle, error) {
	attr := unix.PerfEventAttr{
		Type:   spec.Type,
		Config: spec.Config,
		Size:   uint32(binary.Size(unix.PerfEventAttr{})),
		Bits:   unix.PerfBitDisabled,
		Read_format: unix.PERF_FORMAT_TOTAL_TIME_ENABLED |
			unix.PERF_FORMAT_TOTAL_TIME_RUNNING |
			unix.PERF_FORMAT_ID,
	}
	fd, err := unix.PerfEventOpen(&attr, pid, cpu, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return -1, errors.Wrapf(err, "perf_event_open pid=%d cpu=%d type=%d config=%#x", pid, cpu, spec.Type, spec.Config)
	}
	return Handle(fd), nil
}

func (b *PerfBackend) Reset(h Handle) error {
	return errors.Wrap(unix.IoctlSetInt(int(h), unix.PERF_EVENT_IOC_RESET, 0), "ioctl(PERF_EVENT_IOC_RESET)")
}

func (b *PerfBackend) Enable(h Handle) error {
	return errors.Wrap(unix.IoctlSetInt(int(h), unix.PERF_EVENT_IOC_ENABLE, 0), "ioctl(PERF_EVENT_IOC_ENABLE)")
}

func (b *PerfBackend) Disable(h Handle) error {
	return errors.Wrap(unix.IoctlSetInt(int(h), unix.PERF_EVENT_IOC_DISABLE, 0), "ioctl(PERF_EVENT_IOC_DISABLE)")
}

// Read decodes the perf read_format struct selected at Open: value,
// time_enabled, time_running, id, each a little-endian uint64.
func (b *PerfBackend) Read(h Handle) (RawReading, error) {
	var buf [32]byte
	n, err := unix.Read(int(h), buf[:])
	if err != nil {
		return RawReading{}, errors.Wrap(err, "read perf event fd")
	}
	if n < len(buf) {
		return RawReading{}, errors.Errorf("short read from perf event fd: %d bytes", n)
	}
	return RawReading{
		Value:       binary.LittleEndian.Uint64(buf[0:8]),
		TimeEnabled: binary.LittleEndian.Uint64(buf[8:16]),
		TimeRunning: binary.LittleEndian.Uint64(buf[16:24]),
		ID:          binary.LittleEndian.Uint64(buf[24:32]),
	}, nil
}

func (b *PerfBackend) Close(h Handle) error {
	return errors.Wrap(unix.Close(int(h)), "close perf event fd")
}
