/*
 *     Copyright 2024 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenbridge/ecoscore/inference/config"
	"github.com/greenbridge/ecoscore/version"
)

const (
	// Namespace is the metrics namespace of the project.
	Namespace = "ecoscore"

	// Subsystem is the metrics subsystem of the inference service.
	Subsystem = "inference"
)

const (
	// PredictStatusSuccess labels predictions served by the model.
	PredictStatusSuccess = "success"

	// PredictStatusFallback labels predictions served by the heuristic.
	PredictStatusFallback = "fallback"
)

const (
	FailureReasonMissingField = "missing_field"
	FailureReasonInvalidBody  = "invalid_body"
	FailureReasonUnavailable  = "unavailable"
	FailureReasonInternal     = "internal"
)

// Variables declared for metrics.
var (
	PredictCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "predict_total",
		Help:      "Counter of the number of the prediction.",
	}, []string{"status"})

	PredictFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "predict_failure_total",
		Help:      "Counter of the number of failed of the prediction.",
	}, []string{"reason"})

	PredictDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "predict_duration_seconds",
		Help:      "Histogram of the time each prediction took.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	ModelLoadCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "model_load_total",
		Help:      "Counter of the number of the model loading.",
	})

	ModelLoadFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "model_load_failure_total",
		Help:      "Counter of the number of failed of the model loading.",
	})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"major", "minor", "git_version", "git_commit", "platform", "build_time", "go_version"})
)

// New returns the metrics server.
func New(cfg *config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	VersionGauge.WithLabelValues(version.Major, version.Minor, version.GitVersion, version.GitCommit, version.Platform, version.BuildTime, version.GoVersion).Set(1)
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
}
