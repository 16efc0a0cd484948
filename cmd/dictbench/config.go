// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// config holds the benchmark driver's settings: how much of the original
// DICT_BENCHMARK_MAIN run to reproduce, the rehash catch-up budget, and
// which optional surfaces (REPL, metrics) to start.
type config struct {
	Count       int64  `json:"count"`
	RehashMs    int    `json:"rehash_ms"`
	LogLevel    string `json:"log_level"`
	Interactive bool   `json:"interactive"`
	MetricsAddr string `json:"metrics_addr"`
}

func defaultConfig() config {
	return config{
		Count:    1000000,
		RehashMs: 100,
		LogLevel: "notice",
	}
}

// loadConfigFile reads a JSONC (JSON-with-comments) profile the same way
// calvinalkan-agent-task's config loader does: hujson.Standardize, then
// encoding/json.Unmarshal. A missing path is not an error; the caller
// keeps its defaults.
func loadConfigFile(path string) (config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return config{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return cfg, nil
}
