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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/mitchellh/mapstructure"
	"github.com/sjwhitworth/golearn/base"

	logger "github.com/greenbridge/ecoscore/internal/ecolog"
)

var (
	// ErrNotFitted is returned when predicting with an untrained model.
	ErrNotFitted = errors.New("no fitted model")

	// ErrClassAttribute is returned when the instances do not carry exactly one class attribute.
	ErrClassAttribute = errors.New("only 1 class variable is permitted")
)

// LinearRegression is a linear model trained by stochastic gradient descent.
type LinearRegression struct {
	Fitted                 bool                   `json:"fitted"`
	Disturbance            float64                `json:"disturbance"`
	RegressionCoefficients []float64              `json:"regression_coefficients"`
	Attrs                  []*base.FloatAttribute `json:"attrs"`
	Cls                    *base.FloatAttribute   `json:"cls"`
}

// FitOptions controls gradient descent.
type FitOptions struct {
	// LearningRate is the step size of every update.
	LearningRate float64

	// Epochs is the number of passes over the instances.
	Epochs int

	// Seed makes initial weights and row order reproducible.
	Seed int64

	// OnEpoch is called after every finished pass.
	OnEpoch func(epoch int)
}

// NewLinearRegression return an instance of linear regression model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{Fitted: false}
}

// Fit train parameters of model to fit the data provided.
func (lr *LinearRegression) Fit(inst base.FixedDataGrid, opts FitOptions) error {
	_, rows := inst.Size()
	if rows == 0 {
		return errors.New("no instances to fit")
	}

	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}

	classAttrs := inst.AllClassAttributes()
	if len(classAttrs) != 1 {
		return ErrClassAttribute
	}
	cls, ok := classAttrs[0].(*base.FloatAttribute)
	if !ok {
		return fmt.Errorf("class attribute %s is not a float attribute", classAttrs[0].GetName())
	}
	classAttrSpecs := base.ResolveAttributes(inst, classAttrs)

	// AllAttributes keeps insertion order, NonClassAttributes walks a map and
	// would hand the seeded weights out in a different order on every call.
	allAttrs := inst.AllAttributes()
	attrs := make([]base.Attribute, 0, len(allAttrs))
	for _, a := range allAttrs {
		if a.Equals(cls) {
			continue
		}

		if _, ok := a.(*base.FloatAttribute); ok {
			attrs = append(attrs, a)
		}
	}
	attrSpecs := base.ResolveAttributes(inst, attrs)

	// Unpack once, golearn storage is byte oriented.
	xs := make([][]float64, rows)
	ys := make([]float64, rows)
	for i := 0; i < rows; i++ {
		xs[i] = make([]float64, len(attrSpecs))
		for j, spec := range attrSpecs {
			xs[i][j] = base.UnpackBytesToFloat(inst.Get(spec, i))
		}
		ys[i] = base.UnpackBytesToFloat(inst.Get(classAttrSpecs[0], i))
	}

	r := rand.New(rand.NewSource(opts.Seed))
	cols := len(attrs) + 1
	regressionCoefficients := make([]float64, cols)
	for i := 0; i < cols; i++ {
		regressionCoefficients[i] = r.Float64() * 0.01
	}

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		for _, i := range r.Perm(rows) {
			out := regressionCoefficients[0]
			for j := 1; j < cols; j++ {
				out += xs[i][j-1] * regressionCoefficients[j]
			}

			residual := ys[i] - out
			regressionCoefficients[0] += opts.LearningRate * residual
			for j := 1; j < cols; j++ {
				regressionCoefficients[j] += opts.LearningRate * residual * xs[i][j-1]
			}
		}

		if opts.OnEpoch != nil {
			opts.OnEpoch(epoch)
		}
	}

	lr.Disturbance = regressionCoefficients[0]
	lr.RegressionCoefficients = regressionCoefficients[1:]
	lr.Fitted = true
	lr.Attrs = make([]*base.FloatAttribute, len(attrs))
	for idx, a := range attrs {
		lr.Attrs[idx] = a.(*base.FloatAttribute)
	}
	lr.Cls = cls
	return nil
}

// Predict use parameters of model to predict the data provided.
func (lr *LinearRegression) Predict(X base.FixedDataGrid) (base.FixedDataGrid, error) {
	if !lr.Fitted {
		logger.Info("no fitted model")
		return nil, ErrNotFitted
	}

	attrSpecs := make([]base.AttributeSpec, len(lr.Attrs))
	for idx, a := range lr.Attrs {
		spec, err := X.GetAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("resolve attribute %s: %w", a.GetName(), err)
		}
		attrSpecs[idx] = spec
	}

	ret := base.GeneratePredictionVector(X)
	clsSpec, err := ret.GetAttribute(lr.Cls)
	if err != nil {
		logger.Infof("LinearRegression error happens, error is %v", err)
		return nil, err
	}

	err = X.MapOverRows(attrSpecs, func(row [][]byte, i int) (bool, error) {
		var prediction = lr.Disturbance
		for j, r := range row {
			prediction += base.UnpackBytesToFloat(r) * lr.RegressionCoefficients[j]
		}

		ret.Set(clsSpec, i, base.PackFloatToBytes(prediction))
		return true, nil
	})
	if err != nil {
		logger.Infof("LinearRegression error happens, error is %v", err)
		return nil, err
	}
	return ret, nil
}

// Features returns the number of input attributes the model was fitted on.
func (lr *LinearRegression) Features() int {
	return len(lr.RegressionCoefficients)
}

func (lr *LinearRegression) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"fitted":                  lr.Fitted,
		"disturbance":             lr.Disturbance,
		"regression_coefficients": lr.RegressionCoefficients,
		"attrs":                   lr.marshalFloatAttributes(),
		"cls":                     marshalFloatAttribute(lr.Cls),
	})
}

func marshalFloatAttribute(f *base.FloatAttribute) map[string]any {
	if f == nil {
		return nil
	}

	return map[string]any{
		"name":      f.Name,
		"precision": f.Precision,
	}
}

func (lr *LinearRegression) marshalFloatAttributes() []map[string]any {
	ans := make([]map[string]any, len(lr.Attrs))
	for idx, attr := range lr.Attrs {
		ans[idx] = marshalFloatAttribute(attr)
	}
	return ans
}

func (lr *LinearRegression) UnmarshalJSON(data []byte) error {
	var d map[string]any
	err := json.Unmarshal(data, &d)
	if err != nil {
		return err
	}

	err = mapstructure.Decode(d, lr)
	if err != nil {
		return err
	}
	val, ok := d["regression_coefficients"]
	if ok {
		var coefficients []float64
		err = mapstructure.Decode(val, &coefficients)
		if err != nil {
			return err
		}
		lr.RegressionCoefficients = coefficients
	}

	if lr.Fitted && len(lr.RegressionCoefficients) != len(lr.Attrs) {
		return fmt.Errorf("model has %d coefficients for %d attributes", len(lr.RegressionCoefficients), len(lr.Attrs))
	}
	return nil
}
