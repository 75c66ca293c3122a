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

//go:generate mockgen -destination mocks/predictor_mock.go -source predictor.go -package mocks

package predictor

import (
	"context"
	"errors"

	"github.com/greenbridge/ecoscore/pkg/feature"
)

const (
	// CarbonFootprintTarget is the dataset column of the carbon footprint label.
	CarbonFootprintTarget = "Carbon Footprint (kg CO2e)"

	// EcoScoreTarget is the dataset column of the eco score label, on a 0-100 scale.
	EcoScoreTarget = "Eco Score"
)

var (
	// ErrShapeMismatch is returned when a record does not have the shape the pipeline was fitted on.
	ErrShapeMismatch = errors.New("feature shape mismatch")

	// ErrNonFinite is returned when a prediction is NaN or infinite.
	ErrNonFinite = errors.New("non-finite prediction")
)

// Targets returns the labels every pipeline predicts, in output order.
func Targets() []string {
	return []string{CarbonFootprintTarget, EcoScoreTarget}
}

// Prediction is the raw output of a predictor.
type Prediction struct {
	// CarbonFootprint in kg CO2e.
	CarbonFootprint float64

	// EcoScore on the 0-100 scale of the training data.
	EcoScore float64

	// EcoFriendly is set when the predictor supplies its own flag.
	EcoFriendly *bool
}

// Predictor maps a rendered feature record to a prediction.
type Predictor interface {
	// Predict runs the model on a single record.
	Predict(context.Context, *feature.Record) (*Prediction, error)
}
