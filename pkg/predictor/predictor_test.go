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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor/models"
)

var mockMaterials = []string{"Cotton", "Polyester"}

func mockRawRecords() []map[string]any {
	categories := []string{"Clothing", "Electronics", "Home"}
	records := make([]map[string]any, 0, 12)
	for i := 0; i < 12; i++ {
		records = append(records, map[string]any{
			feature.WeightField:               float64(i + 1),
			feature.DistanceField:             float64(100 * i),
			feature.RecyclableField:           i%2 == 0,
			feature.RepairableField:           "No",
			feature.LifespanField:             float64(i % 5),
			feature.CategoryField:             categories[i%3],
			feature.SubcategoryField:          fmt.Sprintf("Sub %d", i%2),
			feature.PackagingField:            "Cardboard",
			feature.MaterialField("Cotton"):    float64(10 * (i % 7)),
			feature.MaterialField("Polyester"): float64(100 - 10*(i%7)),
		})
	}
	return records
}

func mockLabels(records []map[string]any) ([]float64, []float64) {
	carbon := make([]float64, len(records))
	eco := make([]float64, len(records))
	for i, r := range records {
		weight := r[feature.WeightField].(float64)
		carbon[i] = 2*weight + 3
		eco[i] = 40 + weight*3
	}
	return carbon, eco
}

func newTestPipeline(t *testing.T) (*Pipeline, []*feature.Record) {
	t.Helper()

	schema := feature.New(mockMaterials)
	raw := mockRawRecords()
	records := make([]*feature.Record, len(raw))
	for i, r := range raw {
		record, err := schema.Render(r)
		require.NoError(t, err)
		records[i] = record
	}

	pre, err := FitPreprocessor(records)
	require.NoError(t, err)

	rows := make([][]float64, len(records))
	for i, r := range records {
		rows[i], err = pre.Transform(r)
		require.NoError(t, err)
	}

	carbon, eco := mockLabels(raw)
	names := pre.FeatureNames(schema)
	var regressors []*Regressor
	for target, labels := range map[string][]float64{CarbonFootprintTarget: carbon, EcoScoreTarget: eco} {
		inst, err := models.NewInstances(names, target, rows, labels)
		require.NoError(t, err)

		model := models.NewLinearRegression()
		require.NoError(t, model.Fit(inst, models.FitOptions{LearningRate: 0.01, Epochs: 200, Seed: 42}))
		regressors = append(regressors, &Regressor{Target: target, Model: model})
	}

	pipeline, err := NewPipeline(schema, pre, regressors)
	require.NoError(t, err)
	return pipeline, records
}
