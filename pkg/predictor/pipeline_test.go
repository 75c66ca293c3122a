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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor/models"
)

func TestPipeline_Predict(t *testing.T) {
	pipeline, records := newTestPipeline(t)

	tests := []struct {
		name   string
		ctx    func() context.Context
		record *feature.Record
		expect func(t *testing.T, p *Prediction, err error)
	}{
		{
			name:   "finite prediction",
			ctx:    context.Background,
			record: records[3],
			expect: func(t *testing.T, p *Prediction, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.False(math.IsNaN(p.CarbonFootprint))
				assert.False(math.IsNaN(p.EcoScore))
				assert.Nil(p.EcoFriendly)
			},
		},
		{
			name:   "shape mismatch",
			ctx:    context.Background,
			record: &feature.Record{Numeric: []float64{1}, Categorical: []string{"a"}},
			expect: func(t *testing.T, p *Prediction, err error) {
				assert.ErrorIs(t, err, ErrShapeMismatch)
			},
		},
		{
			name: "canceled context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			record: records[0],
			expect: func(t *testing.T, p *Prediction, err error) {
				assert.ErrorIs(t, err, context.Canceled)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := pipeline.Predict(tc.ctx(), tc.record)
			tc.expect(t, p, err)
		})
	}
}

func TestPipeline_PredictDeterministic(t *testing.T) {
	pipeline, records := newTestPipeline(t)

	first, err := pipeline.Predict(context.Background(), records[5])
	require.NoError(t, err)
	second, err := pipeline.Predict(context.Background(), records[5])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPipeline_NonFinite(t *testing.T) {
	pipeline, records := newTestPipeline(t)
	pipeline.Regressors[0].Model.Disturbance = math.Inf(1)

	_, err := pipeline.Predict(context.Background(), records[0])
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestPipeline_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(p *Pipeline)
		expect func(t *testing.T, err error)
	}{
		{
			name: "valid",
			mock: func(p *Pipeline) {},
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "missing regressor",
			mock: func(p *Pipeline) {
				p.Regressors = p.Regressors[:1]
			},
			expect: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "unfitted regressor",
			mock: func(p *Pipeline) {
				p.Regressors[1].Model = models.NewLinearRegression()
			},
			expect: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrNotFitted)
			},
		},
		{
			name: "schema wider than the models",
			mock: func(p *Pipeline) {
				p.Schema = feature.New(append(mockMaterials, "Wool"))
				p.Preprocessor.Scaler.Means = append(p.Preprocessor.Scaler.Means, 0)
				p.Preprocessor.Scaler.Scales = append(p.Preprocessor.Scaler.Scales, 1)
			},
			expect: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrShapeMismatch)
			},
		},
		{
			name: "no schema",
			mock: func(p *Pipeline) {
				p.Schema = nil
			},
			expect: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pipeline, _ := newTestPipeline(t)
			tc.mock(pipeline)
			tc.expect(t, pipeline.Validate())
		})
	}
}
