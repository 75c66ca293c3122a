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
	"fmt"

	"github.com/sjwhitworth/golearn/base"
)

// NewInstances packs rows of features and their labels into dense instances,
// with one float attribute per name and the class attribute last.
func NewInstances(names []string, class string, rows [][]float64, labels []float64) (*base.DenseInstances, error) {
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("%d rows but %d labels", len(rows), len(labels))
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, 0, len(names)+1)
	for _, name := range names {
		specs = append(specs, inst.AddAttribute(base.NewFloatAttribute(name)))
	}

	cls := base.NewFloatAttribute(class)
	clsSpec := inst.AddAttribute(cls)
	if err := inst.AddClassAttribute(cls); err != nil {
		return nil, err
	}

	if err := inst.Extend(len(rows)); err != nil {
		return nil, err
	}

	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(names))
		}

		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		inst.Set(clsSpec, i, base.PackFloatToBytes(labels[i]))
	}

	return inst, nil
}

// Values unpacks the first attribute of a prediction vector.
func Values(grid base.FixedDataGrid) ([]float64, error) {
	attrs := grid.AllAttributes()
	if len(attrs) == 0 {
		return nil, fmt.Errorf("prediction has no attributes")
	}

	spec, err := grid.GetAttribute(attrs[0])
	if err != nil {
		return nil, err
	}

	_, rows := grid.Size()
	values := make([]float64, rows)
	for i := 0; i < rows; i++ {
		values[i] = base.UnpackBytesToFloat(grid.Get(spec, i))
	}
	return values, nil
}
