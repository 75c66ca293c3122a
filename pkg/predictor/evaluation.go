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
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Evaluation holds regression metrics of one target on held-out data.
type Evaluation struct {
	// MAE Mean Absolute Error.
	MAE float64 `json:"mae" mapstructure:"mae"`

	// MSE Mean Square Error.
	MSE float64 `json:"mse" mapstructure:"mse"`

	// RMSE Root Mean Square Error.
	RMSE float64 `json:"rmse" mapstructure:"rmse"`

	// R² coefficient of determination.
	R2 float64 `json:"r2" mapstructure:"r2"`

	// Samples is the number of evaluated rows.
	Samples int `json:"samples" mapstructure:"samples"`
}

// Evaluate compares predictions with labels.
func Evaluate(outputs, labels []float64) (*Evaluation, error) {
	if len(outputs) != len(labels) {
		return nil, errors.Errorf("%d outputs but %d labels", len(outputs), len(labels))
	}

	if len(outputs) == 0 {
		return nil, errors.New("nothing to evaluate")
	}

	var maeSum, mseSum float64
	for i := range outputs {
		maeSum += math.Abs(labels[i] - outputs[i])
		mseSum += math.Pow(labels[i]-outputs[i], 2)
	}

	mean, err := stats.Mean(labels)
	if err != nil {
		return nil, err
	}

	var tssSum float64
	for _, l := range labels {
		tssSum += math.Pow(l-mean, 2)
	}

	n := float64(len(outputs))
	e := &Evaluation{
		MAE:     maeSum / n,
		MSE:     mseSum / n,
		RMSE:    math.Sqrt(mseSum / n),
		Samples: len(outputs),
	}

	// Constant labels leave R² undefined, a perfect fit scores 1 and anything else 0.
	switch {
	case tssSum != 0:
		e.R2 = 1 - mseSum/tssSum
	case mseSum == 0:
		e.R2 = 1
	}

	if err := e.Check(); err != nil {
		return nil, err
	}

	return e, nil
}

// Check fails on NaN metrics.
func (e *Evaluation) Check() error {
	if math.IsNaN(e.MAE) || math.IsNaN(e.MSE) || math.IsNaN(e.RMSE) || math.IsNaN(e.R2) {
		return errors.Wrap(ErrNonFinite, "model NAN")
	}
	return nil
}
