package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Hardware event name resolution. The sampling session treats event specs as
// opaque, so the name table lives here on the caller side. Identifiers are
// the PERF_TYPE_HARDWARE class events from linux/perf_event.h, defined
// locally so this package builds on every platform.

import (
	"fmt"
	"slices"
	"strings"

	"pgos/internal/session"

	mapset "github.com/deckarep/golang-set/v2"
)

const perfTypeHardware = 0

// generalized hardware event identifiers (PERF_COUNT_HW_*)
var eventCatalogue = map[string]uint64{
	"cycles":                  0,
	"instructions":            1,
	"cache_references":        2,
	"cache_misses":            3,
	"branch_instructions":     4,
	"branch_misses":           5,
	"bus_cycles":              6,
	"stalled_cycles_frontend": 7,
	"stalled_cycles_backend":  8,
	"ref_cycles":              9,
}

// resolveEvents maps event names to specs, in the order given. Unknown and
// duplicate names are rejected; duplicates would silently double that event's
// aggregate.
func resolveEvents(names []string) ([]session.EventSpec, error) {
	seen := mapset.NewSetWithSize[string](len(names))
	specs := make([]session.EventSpec, 0, len(names))
	for _, name := range names {
		config, ok := eventCatalogue[name]
		if !ok {
			return nil, fmt.Errorf("unknown event: %s, available events: %s", name, strings.Join(availableEvents(), ", "))
		}
		if !seen.Add(name) {
			return nil, fmt.Errorf("duplicate event: %s", name)
		}
		specs = append(specs, session.EventSpec{Type: perfTypeHardware, Config: config})
	}
	return specs, nil
}

// availableEvents returns the known event names in sorted order.
func availableEvents() []string {
	names := make([]string, 0, len(eventCatalogue))
	for name := range eventCatalogue {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
