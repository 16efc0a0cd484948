// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dictbench is the benchmark/driver entry point for the
// rehashdict container: a pure consumer of internal/dict's public
// contract, reproducing the original DICT_BENCHMARK_MAIN scenarios and
// optionally dropping into an interactive REPL or serving Prometheus
// metrics for a long-running instance.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/zyhnesmr/rehashdict/internal/dict"
	"github.com/zyhnesmr/rehashdict/internal/dictmetrics"
	"github.com/zyhnesmr/rehashdict/pkg/log"
)

func main() {
	cfg := defaultConfig()

	configPath := flag.String("config", "", "path to a JSONC benchmark profile")
	count := flag.Int64("count", cfg.Count, "number of keys to insert")
	rehashMs := flag.Int("rehash-ms", cfg.RehashMs, "wall-clock budget per bulk rehash catch-up call")
	logLevel := flag.String("log-level", cfg.LogLevel, "debug|notice|warning|error")
	interactive := flag.Bool("interactive", false, "drop into a REPL instead of running the fixed benchmark")
	metricsAddr := flag.String("metrics-addr", "", "if set in interactive mode, serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	fileCfg, err := loadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg = fileCfg
	if flag.CommandLine.Changed("count") {
		cfg.Count = *count
	}

	if flag.CommandLine.Changed("rehash-ms") {
		cfg.RehashMs = *rehashMs
	}

	if flag.CommandLine.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if flag.CommandLine.Changed("interactive") {
		cfg.Interactive = *interactive
	}

	if flag.CommandLine.Changed("metrics-addr") {
		cfg.MetricsAddr = *metricsAddr
	}

	log.SetLevelString(cfg.LogLevel)

	if cfg.Interactive {
		runInteractive(cfg)
		return
	}

	if err := runBenchmark(cfg); err != nil {
		log.Error("benchmark failed: %v", err)
		os.Exit(1)
	}
}

func runInteractive(cfg config) {
	r, err := newREPL()
	if err != nil {
		log.Error("starting REPL: %v", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, r.d)
		defer shutdownMetricsServer(srv)
	}

	if err := r.Run(os.Stdout); err != nil {
		log.Error("REPL: %v", err)
		os.Exit(1)
	}
}

// startMetricsServer registers a dictmetrics.Collector over d and serves
// it on addr, the way goarista's exporters expose a custom collector via
// promhttp.Handler.
func startMetricsServer(addr string, d *dict.Dict) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(dictmetrics.New("dictbench", d))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server: %v", err)
		}
	}()

	log.Info("serving metrics on %s/metrics", addr)

	return srv
}

func shutdownMetricsServer(srv *http.Server) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = srv.Shutdown(ctx)
}

