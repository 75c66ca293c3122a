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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineInstances(t *testing.T, n int) ([][]float64, []float64) {
	t.Helper()

	rows := make([][]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := -1 + 2*float64(i)/float64(n-1)
		x2 := float64(i%2) - 0.5
		rows[i] = []float64{x1, x2}
		labels[i] = 3*x1 - 2*x2 + 5
	}
	return rows, labels
}

func TestLinearRegression_Fit(t *testing.T) {
	tests := []struct {
		name   string
		opts   FitOptions
		expect func(t *testing.T, lr *LinearRegression, err error)
	}{
		{
			name: "converges on a linear target",
			opts: FitOptions{LearningRate: 0.05, Epochs: 300, Seed: 42},
			expect: func(t *testing.T, lr *LinearRegression, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.True(lr.Fitted)
				assert.InDelta(5, lr.Disturbance, 0.05)
				assert.InDelta(3, lr.RegressionCoefficients[0], 0.05)
				assert.InDelta(-2, lr.RegressionCoefficients[1], 0.05)
				assert.Equal(2, lr.Features())
				assert.Equal("y", lr.Cls.GetName())
			},
		},
		{
			name: "reports every epoch",
			opts: FitOptions{LearningRate: 0.01, Epochs: 3, Seed: 1},
			expect: func(t *testing.T, lr *LinearRegression, err error) {
				require.NoError(t, err)
				assert.True(t, lr.Fitted)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, labels := lineInstances(t, 50)
			inst, err := NewInstances([]string{"x1", "x2"}, "y", rows, labels)
			require.NoError(t, err)

			var epochs []int
			tc.opts.OnEpoch = func(epoch int) { epochs = append(epochs, epoch) }

			lr := NewLinearRegression()
			err = lr.Fit(inst, tc.opts)
			tc.expect(t, lr, err)
			assert.Len(t, epochs, tc.opts.Epochs)
		})
	}
}

func TestLinearRegression_FitDeterministic(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	rows := make([][]float64, 30)
	labels := make([]float64, len(rows))
	for i := range rows {
		rows[i] = make([]float64, len(names))
		for j := range names {
			rows[i][j] = float64((i*(j+3))%7) / 7
			labels[i] += float64(int(1)<<j) * rows[i][j]
		}
	}

	fit := func() *LinearRegression {
		inst, err := NewInstances(names, "y", rows, labels)
		require.NoError(t, err)

		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(inst, FitOptions{LearningRate: 0.01, Epochs: 5, Seed: 7}))
		return lr
	}

	expected := fit()
	for i, a := range expected.Attrs {
		assert.Equal(t, names[i], a.GetName())
	}

	for i := 0; i < 10; i++ {
		lr := fit()
		assert.Equal(t, expected.RegressionCoefficients, lr.RegressionCoefficients)
		assert.Equal(t, expected.Disturbance, lr.Disturbance)
	}
}

func TestLinearRegression_Predict(t *testing.T) {
	assert := assert.New(t)

	_, err := NewLinearRegression().Predict(nil)
	assert.ErrorIs(err, ErrNotFitted)

	rows, labels := lineInstances(t, 50)
	inst, err := NewInstances([]string{"x1", "x2"}, "y", rows, labels)
	require.NoError(t, err)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(inst, FitOptions{LearningRate: 0.05, Epochs: 300, Seed: 42}))

	query, err := NewInstances([]string{"x1", "x2"}, "y", [][]float64{{0, 0}, {1, 0.5}}, []float64{0, 0})
	require.NoError(t, err)
	out, err := lr.Predict(query)
	require.NoError(t, err)

	values, err := Values(out)
	require.NoError(t, err)
	assert.InDelta(5, values[0], 0.1)
	assert.InDelta(7, values[1], 0.1)

	other, err := NewInstances([]string{"z"}, "y", [][]float64{{1}}, []float64{0})
	require.NoError(t, err)
	_, err = lr.Predict(other)
	assert.Error(err)
}

func TestLinearRegression_JSON(t *testing.T) {
	rows, labels := lineInstances(t, 10)
	inst, err := NewInstances([]string{"x1", "x2"}, "y", rows, labels)
	require.NoError(t, err)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(inst, FitOptions{LearningRate: 0.01, Epochs: 2, Seed: 3}))

	data, err := json.Marshal(lr)
	require.NoError(t, err)

	decoded := NewLinearRegression()
	require.NoError(t, json.Unmarshal(data, decoded))

	assert := assert.New(t)
	assert.True(decoded.Fitted)
	assert.Equal(lr.Disturbance, decoded.Disturbance)
	assert.Equal(lr.RegressionCoefficients, decoded.RegressionCoefficients)
	assert.Equal("x1", decoded.Attrs[0].GetName())
	assert.Equal("y", decoded.Cls.GetName())

	broken := []byte(`{"fitted":true,"disturbance":1,"regression_coefficients":[1,2],"attrs":[{"name":"x1","precision":2}],"cls":{"name":"y","precision":2}}`)
	assert.Error(json.Unmarshal(broken, NewLinearRegression()))
}

func TestNewInstances(t *testing.T) {
	assert := assert.New(t)

	_, err := NewInstances([]string{"a"}, "y", [][]float64{{1}}, nil)
	assert.Error(err)

	_, err = NewInstances([]string{"a", "b"}, "y", [][]float64{{1}}, []float64{1})
	assert.Error(err)

	inst, err := NewInstances([]string{"a"}, "y", [][]float64{{1}, {2}}, []float64{3, 4})
	require.NoError(t, err)
	cols, rows := inst.Size()
	assert.Equal(2, cols)
	assert.Equal(2, rows)
	assert.Len(inst.AllClassAttributes(), 1)
}
