package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}
	tests := []struct {
		path     string
		expected string
	}{
		{"~", home},
		{filepath.Join("~", "somedir"), filepath.Join(home, "somedir")},
		{"/tmp/somedir", "/tmp/somedir"},
		{"relative/path", "relative/path"},
	}
	for _, test := range tests {
		result := ExpandUser(test.path)
		if result != test.expected {
			t.Errorf("expected %s, got %s for path %s", test.expected, result, test.path)
		}
	}
}

func TestDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	exists, err := DirectoryExists(dir)
	if err != nil {
		t.Fatalf("failed to check directory: %v", err)
	}
	if !exists {
		t.Errorf("expected %s to exist", dir)
	}

	exists, err = DirectoryExists(filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("failed to check missing directory: %v", err)
	}
	if exists {
		t.Errorf("expected missing directory to not exist")
	}

	// a regular file is not a directory
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if _, err = DirectoryExists(file); err == nil {
		t.Errorf("expected error for regular file")
	}
}

func TestUniqueAppend(t *testing.T) {
	tests := []struct {
		slice    []int
		item     int
		expected []int
	}{
		{nil, 1, []int{1}},
		{[]int{1, 2}, 3, []int{1, 2, 3}},
		{[]int{1, 2}, 2, []int{1, 2}},
	}
	for _, test := range tests {
		result := UniqueAppend(test.slice, test.item)
		if len(result) != len(test.expected) {
			t.Errorf("expected %v, got %v", test.expected, result)
			continue
		}
		for i := range result {
			if result[i] != test.expected[i] {
				t.Errorf("expected %v, got %v", test.expected, result)
				break
			}
		}
	}
}
