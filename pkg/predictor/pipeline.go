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

package predictor

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor/models"
)

// Regressor is a fitted model of one target.
type Regressor struct {
	Target string                   `json:"target" mapstructure:"target"`
	Model  *models.LinearRegression `json:"model" mapstructure:"model"`
}

// Pipeline is the fitted preprocessing and regression chain of a schema.
type Pipeline struct {
	Schema       *feature.Schema `json:"schema"`
	Preprocessor *Preprocessor   `json:"preprocessor"`
	Regressors   []*Regressor    `json:"regressors"`
}

// NewPipeline returns a validated pipeline.
func NewPipeline(schema *feature.Schema, preprocessor *Preprocessor, regressors []*Regressor) (*Pipeline, error) {
	p := &Pipeline{
		Schema:       schema,
		Preprocessor: preprocessor,
		Regressors:   regressors,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks every stage agrees on the feature shape and every target has a model.
func (p *Pipeline) Validate() error {
	if p.Schema == nil || p.Preprocessor == nil {
		return errors.New("pipeline is missing schema or preprocessor")
	}

	if err := p.Schema.Validate(); err != nil {
		return errors.Wrap(err, "invalid schema")
	}

	if err := p.Preprocessor.Validate(p.Schema); err != nil {
		return err
	}

	width := p.Preprocessor.Width()
	for _, target := range Targets() {
		r := p.regressor(target)
		if r == nil || r.Model == nil {
			return errors.Errorf("pipeline has no model for %s", target)
		}

		if !r.Model.Fitted {
			return errors.Wrapf(models.ErrNotFitted, "target %s", target)
		}

		if r.Model.Features() != width {
			return errors.Wrapf(ErrShapeMismatch, "model of %s expects %d features, preprocessor yields %d", target, r.Model.Features(), width)
		}
	}

	return nil
}

// Predict implements Predictor.
func (p *Pipeline) Predict(ctx context.Context, record *feature.Record) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, err := p.Preprocessor.Transform(record)
	if err != nil {
		return nil, err
	}

	outputs, err := p.PredictMatrix([][]float64{x})
	if err != nil {
		return nil, err
	}

	return &Prediction{
		CarbonFootprint: outputs[CarbonFootprintTarget][0],
		EcoScore:        outputs[EcoScoreTarget][0],
	}, nil
}

// PredictMatrix runs every regressor over already transformed rows.
func (p *Pipeline) PredictMatrix(rows [][]float64) (map[string][]float64, error) {
	names := p.Preprocessor.FeatureNames(p.Schema)
	outputs := make(map[string][]float64, len(p.Regressors))
	for _, target := range Targets() {
		r := p.regressor(target)
		if r == nil {
			return nil, errors.Errorf("pipeline has no model for %s", target)
		}

		inst, err := models.NewInstances(names, target, rows, make([]float64, len(rows)))
		if err != nil {
			return nil, errors.Wrap(ErrShapeMismatch, err.Error())
		}

		out, err := r.Model.Predict(inst)
		if err != nil {
			return nil, errors.Wrapf(err, "predict %s", target)
		}

		values, err := models.Values(out)
		if err != nil {
			return nil, err
		}

		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrNonFinite, "%s is %v", target, v)
			}
		}
		outputs[target] = values
	}

	return outputs, nil
}

func (p *Pipeline) regressor(target string) *Regressor {
	for _, r := range p.Regressors {
		if r != nil && r.Target == target {
			return r
		}
	}
	return nil
}
