package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promMetricPrefix = "pgos_"

var eventGaugeVec = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: promMetricPrefix + "event_count",
		Help: "Hardware event count aggregated over the monitored pids and cpus for the last collection cycle",
	},
	[]string{"event", "pids"},
)

var metricGaugeVec = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: promMetricPrefix + "derived_metric",
		Help: "Metric derived from aggregated hardware event counts for the last collection cycle",
	},
	[]string{"metric", "pids"},
)

func startPrometheusServer(listenAddr string) {
	prometheus.MustRegister(eventGaugeVec, metricGaugeVec)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("Starting Prometheus metrics server", slog.String("address", listenAddr))
	go func() {
		server := &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 3 * time.Second,
		}
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Prometheus HTTP server ListenAndServe error", slog.String("error", err.Error()))
		}
	}()
}

func updatePrometheusMetrics(frame ResultFrame) {
	for _, event := range frame.Events {
		eventGaugeVec.WithLabelValues(event.Name, frame.PIDs).Set(float64(event.Value))
	}
	for _, metric := range frame.Metrics {
		if math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0) {
			continue
		}
		metricGaugeVec.WithLabelValues(metric.Name, frame.PIDs).Set(metric.Value)
	}
}
