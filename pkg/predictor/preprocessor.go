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
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/pkg/feature"
)

// Scaler standardizes numeric columns with the population mean and deviation.
type Scaler struct {
	Means  []float64 `json:"means" mapstructure:"means"`
	Scales []float64 `json:"scales" mapstructure:"scales"`
}

// Encoder one-hot encodes categorical columns. Categories unseen at fit time encode to all zeros.
type Encoder struct {
	Categories [][]string `json:"categories" mapstructure:"categories"`
}

// Preprocessor turns a rendered record into the float vector the regressors consume.
type Preprocessor struct {
	Scaler  Scaler  `json:"scaler" mapstructure:"scaler"`
	Encoder Encoder `json:"encoder" mapstructure:"encoder"`
}

// FitPreprocessor learns scaling and categories from training records.
func FitPreprocessor(records []*feature.Record) (*Preprocessor, error) {
	if len(records) == 0 {
		return nil, errors.New("no records to fit preprocessor")
	}

	numeric, categorical := len(records[0].Numeric), len(records[0].Categorical)
	columns := make([]stats.Float64Data, numeric)
	seen := make([]map[string]struct{}, categorical)
	for i := range seen {
		seen[i] = map[string]struct{}{}
	}

	for n, r := range records {
		if len(r.Numeric) != numeric || len(r.Categorical) != categorical {
			return nil, errors.Wrapf(ErrShapeMismatch, "record %d", n)
		}

		for i, v := range r.Numeric {
			columns[i] = append(columns[i], v)
		}
		for i, v := range r.Categorical {
			seen[i][v] = struct{}{}
		}
	}

	p := &Preprocessor{
		Scaler: Scaler{
			Means:  make([]float64, numeric),
			Scales: make([]float64, numeric),
		},
		Encoder: Encoder{
			Categories: make([][]string, categorical),
		},
	}

	for i, column := range columns {
		mean, err := stats.Mean(column)
		if err != nil {
			return nil, errors.Wrapf(err, "mean of column %d", i)
		}

		std, err := stats.StandardDeviationPopulation(column)
		if err != nil {
			return nil, errors.Wrapf(err, "deviation of column %d", i)
		}

		// Constant columns pass through centred but unscaled.
		if std == 0 {
			std = 1
		}

		p.Scaler.Means[i] = mean
		p.Scaler.Scales[i] = std
	}

	for i, values := range seen {
		categories := make([]string, 0, len(values))
		for v := range values {
			categories = append(categories, v)
		}
		sort.Strings(categories)
		p.Encoder.Categories[i] = categories
	}

	return p, nil
}

// Width is the length of transformed vectors.
func (p *Preprocessor) Width() int {
	width := len(p.Scaler.Means)
	for _, categories := range p.Encoder.Categories {
		width += len(categories)
	}
	return width
}

// FeatureNames names every transformed column, numeric columns first.
func (p *Preprocessor) FeatureNames(schema *feature.Schema) []string {
	names := make([]string, 0, p.Width())
	names = append(names, schema.NumericColumns...)
	for i, categories := range p.Encoder.Categories {
		for _, c := range categories {
			names = append(names, fmt.Sprintf("%s=%s", schema.CategoricalColumns[i], c))
		}
	}
	return names
}

// Transform scales and encodes a record.
func (p *Preprocessor) Transform(r *feature.Record) ([]float64, error) {
	if len(r.Numeric) != len(p.Scaler.Means) || len(r.Categorical) != len(p.Encoder.Categories) {
		return nil, errors.Wrapf(ErrShapeMismatch, "got %d numeric and %d categorical values, want %d and %d",
			len(r.Numeric), len(r.Categorical), len(p.Scaler.Means), len(p.Encoder.Categories))
	}

	x := make([]float64, 0, p.Width())
	for i, v := range r.Numeric {
		x = append(x, (v-p.Scaler.Means[i])/p.Scaler.Scales[i])
	}

	for i, categories := range p.Encoder.Categories {
		for _, c := range categories {
			if r.Categorical[i] == c {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}

	return x, nil
}

// Validate checks the preprocessor fits a schema.
func (p *Preprocessor) Validate(schema *feature.Schema) error {
	if len(p.Scaler.Means) != len(schema.NumericColumns) || len(p.Scaler.Scales) != len(schema.NumericColumns) {
		return errors.Wrap(ErrShapeMismatch, "scaler does not match numeric columns")
	}

	if len(p.Encoder.Categories) != len(schema.CategoricalColumns) {
		return errors.Wrap(ErrShapeMismatch, "encoder does not match categorical columns")
	}

	for i, scale := range p.Scaler.Scales {
		if scale == 0 {
			return errors.Errorf("scale of %s is zero", schema.NumericColumns[i])
		}
	}

	return nil
}
