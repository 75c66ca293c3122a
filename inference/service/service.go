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

//go:generate mockgen -destination mocks/service_mock.go -source service.go -package mocks

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/inference/metrics"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/fallback"
	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/pkg/safe"
)

const (
	// StatusSuccess marks a result computed by the model.
	StatusSuccess = "success"

	// StatusFallback marks a result computed by the heuristic.
	StatusFallback = "fallback"
)

const (
	// HealthStatus is reported whenever the server answers.
	HealthStatus = "healthy"

	// HealthMessage is reported whenever the server answers.
	HealthMessage = "Eco ML Server is running"
)

var (
	// ErrModelUnavailable is returned when no model has been loaded.
	ErrModelUnavailable = errors.New("model is not available")

	// ErrInvalidBody is returned when the request body is not a json object.
	ErrInvalidBody = errors.New("invalid json body")
)

// Result is the response of a prediction.
type Result struct {
	// CarbonFootprint in kg CO2e.
	CarbonFootprint float64 `json:"carbon_footprint"`

	// EcoScore normalized to [0, 1].
	EcoScore float64 `json:"eco_score"`

	// EcoFriendly reports whether the raw eco score reaches 60.
	EcoFriendly bool `json:"isEcoFriendly"`

	// Status is success or fallback.
	Status string `json:"status"`

	// Warning is set on fallback results.
	Warning string `json:"warning,omitempty"`
}

// Health is the response of a health check.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Message     string `json:"message"`
}

// Schema describes the columns the loaded model expects.
type Schema struct {
	Columns            []string                          `json:"columns"`
	NumericColumns     []string                          `json:"numeric_columns"`
	CategoricalColumns []string                          `json:"categorical_columns"`
	RequiredFields     []string                          `json:"required_fields"`
	Materials          []string                          `json:"materials"`
	Path               string                            `json:"path,omitempty"`
	CreatedAt          *time.Time                        `json:"created_at,omitempty"`
	LoadedAt           time.Time                         `json:"loaded_at"`
	Evaluations        map[string]*predictor.Evaluation `json:"evaluations,omitempty"`
}

// Service is the interface of the inference service.
type Service interface {
	// Predict decodes a raw record and estimates its footprint, falling back to
	// the heuristic when the model can not compute it.
	Predict(context.Context, []byte) (*Result, error)

	// Health reports whether the server runs and a model is loaded.
	Health() *Health

	// Schema returns the columns of the loaded model.
	Schema() (*Schema, error)

	// Reload loads the artifact again and publishes it on success.
	Reload(context.Context) error
}

type service struct {
	loader *Loader
}

// New returns the inference service backed by a loader.
func New(loader *Loader) Service {
	return &service{loader: loader}
}

// Predict implements Service.
func (s *service) Predict(ctx context.Context, body []byte) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.PredictDuration.Observe(time.Since(start).Seconds())
	}()

	log := logger.WithRequest(RequestID(ctx))

	// Every prediction is unavailable until a model is loaded, whatever the body is.
	c, ok := s.loader.Context()
	if !ok {
		metrics.PredictFailureCount.WithLabelValues(metrics.FailureReasonUnavailable).Inc()
		log.Error("model not loaded")
		return nil, ErrModelUnavailable
	}

	record, err := decode(body)
	if err != nil {
		metrics.PredictFailureCount.WithLabelValues(metrics.FailureReasonInvalidBody).Inc()
		log.Errorf("decode body failed: %s", err.Error())
		return nil, errors.Wrap(ErrInvalidBody, err.Error())
	}
	log.Debugf("received record %v", record)

	if missing := c.Schema.Missing(record); len(missing) > 0 {
		metrics.PredictFailureCount.WithLabelValues(metrics.FailureReasonMissingField).Inc()
		return nil, &feature.MissingFieldError{Fields: missing}
	}

	prediction, err := predict(ctx, c, record)
	if err != nil {
		log.With("record", record, "columns", c.Schema.Columns(), "errorType", fmt.Sprintf("%T", errors.Cause(err))).
			Errorf("model prediction failed: %s", err.Error())

		estimate := fallback.Estimate(record, err)
		result := &Result{
			CarbonFootprint: estimate.CarbonFootprint,
			EcoScore:        estimate.EcoScore,
			EcoFriendly:     estimate.EcoFriendly,
			Status:          StatusFallback,
			Warning:         estimate.Warning,
		}

		metrics.PredictCount.WithLabelValues(metrics.PredictStatusFallback).Inc()
		log.Warnf("use fallback prediction %#v", result)
		return result, nil
	}

	raw := math.Min(fallback.MaxScore, math.Max(fallback.MinScore, prediction.EcoScore))
	result := &Result{
		CarbonFootprint: round(prediction.CarbonFootprint),
		EcoScore:        round(raw / fallback.MaxScore),
		EcoFriendly:     raw >= fallback.EcoFriendlyThreshold,
		Status:          StatusSuccess,
	}

	if prediction.EcoFriendly != nil {
		result.EcoFriendly = *prediction.EcoFriendly
	}

	metrics.PredictCount.WithLabelValues(metrics.PredictStatusSuccess).Inc()
	log.Infof("prediction successful %#v", result)
	return result, nil
}

// Health implements Service.
func (s *service) Health() *Health {
	_, loaded := s.loader.Context()
	return &Health{
		Status:      HealthStatus,
		ModelLoaded: loaded,
		Message:     HealthMessage,
	}
}

// Schema implements Service.
func (s *service) Schema() (*Schema, error) {
	c, ok := s.loader.Context()
	if !ok {
		return nil, ErrModelUnavailable
	}

	schema := &Schema{
		Columns:            c.Schema.Columns(),
		NumericColumns:     c.Schema.NumericColumns,
		CategoricalColumns: c.Schema.CategoricalColumns,
		RequiredFields:     c.Schema.RequiredFields(),
		Materials:          c.Schema.Materials,
		Path:               c.Path,
		LoadedAt:           c.LoadedAt,
	}

	if c.Artifact != nil {
		createdAt := c.Artifact.CreatedAt
		schema.CreatedAt = &createdAt
		schema.Evaluations = c.Artifact.Evaluations
	}

	return schema, nil
}

// Reload implements Service.
func (s *service) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.loader.Load()
}

// predict renders the record and runs the predictor, a panic of the predictor is
// returned as an error.
func predict(ctx context.Context, c *Context, record map[string]any) (*predictor.Prediction, error) {
	var prediction *predictor.Prediction
	if err := safe.Call(func() error {
		rendered, err := c.Schema.Render(record)
		if err != nil {
			return err
		}

		prediction, err = c.Predictor.Predict(ctx, rendered)
		return err
	}); err != nil {
		return nil, err
	}

	if prediction == nil {
		return nil, errors.New("predictor returned no prediction")
	}

	for _, v := range []float64{prediction.CarbonFootprint, prediction.EcoScore} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(predictor.ErrNonFinite, "prediction is %v", v)
		}
	}

	return prediction, nil
}

// decode reads a json object, other json values are invalid bodies.
func decode(body []byte) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, err
	}

	if record == nil {
		return nil, errors.New("body is not a json object")
	}

	return record, nil
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
