package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"pgos/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEvents(t *testing.T) {
	specs, err := resolveEvents([]string{"instructions", "cycles", "cache_misses"})
	require.NoError(t, err)
	require.Len(t, specs, 3)
	// specs are in caller order, which determines the result vector layout
	assert.Equal(t, session.EventSpec{Type: perfTypeHardware, Config: 1}, specs[0])
	assert.Equal(t, session.EventSpec{Type: perfTypeHardware, Config: 0}, specs[1])
	assert.Equal(t, session.EventSpec{Type: perfTypeHardware, Config: 3}, specs[2])
}

func TestResolveEventsUnknown(t *testing.T) {
	_, err := resolveEvents([]string{"instructions", "bogus_event"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event: bogus_event")
	assert.Contains(t, err.Error(), "available events")
}

func TestResolveEventsDuplicate(t *testing.T) {
	_, err := resolveEvents([]string{"cycles", "instructions", "cycles"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate event: cycles")
}

func TestAvailableEventsSorted(t *testing.T) {
	names := availableEvents()
	require.Len(t, names, len(eventCatalogue))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestParsePidList(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []int
		wantErr bool
	}{
		{name: "single pid", input: []string{"1234"}, want: []int{1234}},
		{name: "multiple pids", input: []string{"1", "2", "3"}, want: []int{1, 2, 3}},
		{name: "duplicates dropped", input: []string{"5", "5", "7"}, want: []int{5, 7}},
		{name: "not a number", input: []string{"abc"}, wantErr: true},
		{name: "negative pid", input: []string{"-1"}, wantErr: true},
		{name: "zero pid", input: []string{"0"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pids, err := parsePidList(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pids)
		})
	}
}
