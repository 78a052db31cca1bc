// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

const (
	Namespace = "nativehints"
	Subsystem = "build"
)

var (
	// CapabilitiesRegistered counts catalog registrations
	CapabilitiesRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "capabilities_registered_total",
			Help:      "Total number of capabilities registered in a catalog",
		},
	)

	// Activations counts activated capabilities by kind
	Activations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "activations_total",
			Help:      "Total number of activated capabilities",
		},
		[]string{"kind"},
	)

	// Skips counts capabilities left out of a manifest
	Skips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "skips_total",
			Help:      "Total number of skipped capabilities by reason",
		},
		[]string{"reason"},
	)

	// Warnings counts missing optional facility warnings
	Warnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "warnings_total",
			Help:      "Total number of missing optional facility warnings",
		},
	)

	// Failures counts aborted builds by error kind
	Failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "failures_total",
			Help:      "Total number of aborted builds by error kind",
		},
		[]string{"kind"},
	)

	// EmitDuration tracks manifest serialization time
	EmitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "emit_duration_seconds",
			Help:      "Duration of manifest serialization in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"format"},
	)

	// ManifestEntries is the size of the last frozen manifest
	ManifestEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "manifest_entries",
			Help:      "Number of entries in the last frozen manifest",
		},
	)
)

func init() {
	// Register metrics with the global prometheus registry
	prometheus.MustRegister(CapabilitiesRegistered)
	prometheus.MustRegister(Activations)
	prometheus.MustRegister(Skips)
	prometheus.MustRegister(Warnings)
	prometheus.MustRegister(Failures)
	prometheus.MustRegister(EmitDuration)
	prometheus.MustRegister(ManifestEntries)
}

// ObserveEmit records one serialization.
func ObserveEmit(format string, elapsed time.Duration) {
	EmitDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// WriteTextfile dumps the default gatherer in the node exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Runner serves /metrics while a long-running command such as emit --watch is active.
type Runner struct {
	addr   string
	logger logger.Logger
	server *http.Server
}

func New(addr string, logger logger.Logger) *Runner {

	return &Runner{addr: addr, logger: logger.WithName("metrics")}
}

// Start blocks until ctx is done.
func (r *Runner) Start(ctx context.Context) error {

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	r.server = &http.Server{
		Addr:              r.addr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       15 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	r.logger.Info("Starting metrics server", "addr", r.addr)

	go func() {
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error(err, "Metrics server failed")
		}
	}()

	<-ctx.Done()
	return r.Close()
}

// Close shuts the server down.
func (r *Runner) Close() error {

	if r.server != nil {
		r.logger.Info("Shutting down metrics server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return r.server.Shutdown(ctx)
	}
	return nil
}
