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

package training

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/trainer/storage"
)

// ErrNotEnoughRows is returned when the dataset cannot be split into train and test rows.
var ErrNotEnoughRows = errors.New("not enough rows to split")

// Dataset is the rendered training data.
type Dataset struct {
	// Schema frozen over the kept rows.
	Schema *feature.Schema

	// Records are rendered rows in dataset order.
	Records []*feature.Record

	// Labels per target, aligned with Records.
	Labels map[string][]float64

	// Dropped is the number of rejected rows.
	Dropped int
}

// Prepare rejects rows whose required numeric columns or targets do not parse,
// freezes the topK materials of the kept rows and renders them.
func Prepare(products []storage.Product, topK int) (*Dataset, error) {
	var (
		kept         []storage.Product
		compositions []string
		carbon       []float64
		eco          []float64
		dropped      int
	)

	for i := range products {
		p := &products[i]
		c, e, err := labels(p)
		if err != nil {
			logger.TrainLogger.Debugf("drop row %d %q: %v", i, p.Name, err)
			dropped++
			continue
		}

		if err := parsable(p); err != nil {
			logger.TrainLogger.Debugf("drop row %d %q: %v", i, p.Name, err)
			dropped++
			continue
		}

		kept = append(kept, *p)
		compositions = append(compositions, p.MaterialComposition)
		carbon = append(carbon, c)
		eco = append(eco, e)
	}

	schema, err := feature.Build(compositions, topK)
	if err != nil {
		return nil, err
	}

	records := make([]*feature.Record, 0, len(kept))
	for i := range kept {
		record, err := schema.Render(kept[i].Record())
		if err != nil {
			return nil, errors.Wrapf(err, "render %q", kept[i].Name)
		}

		records = append(records, record)
	}

	return &Dataset{
		Schema:  schema,
		Records: records,
		Labels: map[string][]float64{
			predictor.CarbonFootprintTarget: carbon,
			predictor.EcoScoreTarget:        eco,
		},
		Dropped: dropped,
	}, nil
}

// labels parses the targets of a product.
func labels(p *storage.Product) (float64, float64, error) {
	carbon, err := finite(predictor.CarbonFootprintTarget, p.CarbonFootprint)
	if err != nil {
		return 0, 0, err
	}

	eco, err := finite(predictor.EcoScoreTarget, p.EcoScore)
	if err != nil {
		return 0, 0, err
	}

	return carbon, eco, nil
}

// parsable checks numeric columns that must be numbers, lifespan may be empty.
func parsable(p *storage.Product) error {
	if _, err := finite(feature.WeightField, p.Weight); err != nil {
		return err
	}

	if _, err := finite(feature.DistanceField, p.Distance); err != nil {
		return err
	}

	if p.Lifespan != "" {
		if _, err := finite(feature.LifespanField, p.Lifespan); err != nil {
			return err
		}
	}

	return nil
}

func finite(field, value string) (float64, error) {
	if value == "" {
		return 0, errors.Errorf("%s is empty", field)
	}

	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", field)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("%s is %v", field, f)
	}

	return f, nil
}

// Split shuffles row indexes with seed and holds out the ceiling of testPercent of them.
func Split(n int, testPercent float64, seed int64) ([]int, []int, error) {
	tests := int(math.Ceil(testPercent * float64(n)))
	if tests < 1 || n-tests < 1 {
		return nil, nil, errors.Wrapf(ErrNotEnoughRows, "%d rows with test percent %v", n, testPercent)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[tests:], perm[:tests], nil
}
