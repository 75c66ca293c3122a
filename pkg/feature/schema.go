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

package feature

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/greenbridge/ecoscore/pkg/material"
)

// Schema is the frozen, ordered list of feature columns shared by training and serving.
type Schema struct {
	// Materials is the frozen top material set in column order.
	Materials []string `json:"materials" mapstructure:"materials"`

	// NumericColumns are numeric columns in order, base columns followed by material columns.
	NumericColumns []string `json:"numeric_columns" mapstructure:"numeric_columns"`

	// CategoricalColumns are categorical columns in order.
	CategoricalColumns []string `json:"categorical_columns" mapstructure:"categorical_columns"`
}

// Record is a record rendered against a schema.
type Record struct {
	// Numeric values ordered as Schema.NumericColumns.
	Numeric []float64

	// Categorical values ordered as Schema.CategoricalColumns.
	Categorical []string
}

// materialCount is the occurrence count of a material and where it was first seen.
type materialCount struct {
	name  string
	count int
	first int
}

// Build counts material occurrences across compositions and freezes the topK most
// frequent ones into a new schema. A material is counted once per composition that
// names it. Ties keep the order in which materials were first encountered.
func Build(compositions []string, topK int) (*Schema, error) {
	if topK <= 0 || topK > MaxTopK {
		return nil, fmt.Errorf("topK must be in (0, %d], got %d", MaxTopK, topK)
	}

	counts := map[string]*materialCount{}
	var seen int
	for _, composition := range compositions {
		for _, name := range material.Parse(composition).Order {
			if c, ok := counts[name]; ok {
				c.count++
				continue
			}

			counts[name] = &materialCount{name: name, count: 1, first: seen}
			seen++
		}
	}

	ranked := make([]*materialCount, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}

		return ranked[i].first < ranked[j].first
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	materials := make([]string, 0, len(ranked))
	for _, c := range ranked {
		materials = append(materials, c.name)
	}

	return New(materials), nil
}

// New returns a schema over an already frozen material set.
func New(materials []string) *Schema {
	numeric := make([]string, 0, len(BaseNumericColumns)+len(materials))
	numeric = append(numeric, BaseNumericColumns...)
	for _, name := range materials {
		numeric = append(numeric, MaterialField(name))
	}

	return &Schema{
		Materials:          append([]string{}, materials...),
		NumericColumns:     numeric,
		CategoricalColumns: append([]string{}, CategoricalColumns...),
	}
}

// Columns returns the raw columns in the order they are fed to the preprocessor.
func (s *Schema) Columns() []string {
	columns := make([]string, 0, len(s.NumericColumns)+len(s.CategoricalColumns))
	columns = append(columns, s.NumericColumns...)
	return append(columns, s.CategoricalColumns...)
}

// RequiredFields returns fields a record must carry to be rendered.
func (s *Schema) RequiredFields() []string {
	return append([]string{}, RequiredFields...)
}

// Validate checks that the columns are derivable from the frozen material set.
func (s *Schema) Validate() error {
	if len(s.Materials) > MaxTopK {
		return fmt.Errorf("schema carries %d materials, more than %d", len(s.Materials), MaxTopK)
	}

	seen := make(map[string]struct{}, len(s.Materials))
	for _, name := range s.Materials {
		if strings.TrimSpace(name) == "" {
			return errors.New("schema carries an empty material name")
		}

		if _, ok := seen[name]; ok {
			return fmt.Errorf("schema carries duplicate material %q", name)
		}
		seen[name] = struct{}{}
	}

	expected := New(s.Materials)
	if !slices.Equal(expected.NumericColumns, s.NumericColumns) {
		return fmt.Errorf("numeric columns %v do not match materials, expected %v", s.NumericColumns, expected.NumericColumns)
	}

	if !slices.Equal(expected.CategoricalColumns, s.CategoricalColumns) {
		return fmt.Errorf("categorical columns %v do not match, expected %v", s.CategoricalColumns, expected.CategoricalColumns)
	}

	return nil
}

// Missing returns required fields absent from the record, a nil value counts as absent.
func (s *Schema) Missing(record map[string]any) []string {
	var missing []string
	for _, field := range RequiredFields {
		if v, ok := record[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}

	return missing
}

// Render renders a raw record into a record ordered by the schema. Keys unknown to
// the schema are ignored, including materials outside the frozen set.
func (s *Schema) Render(record map[string]any) (*Record, error) {
	if missing := s.Missing(record); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	weight, err := numeric(record, WeightField)
	if err != nil {
		return nil, err
	}

	distance, err := numeric(record, DistanceField)
	if err != nil {
		return nil, err
	}

	lifespan, err := numeric(record, LifespanField)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(s.NumericColumns))
	values = append(values, weight, distance, Flag(record[RecyclableField]), Flag(record[RepairableField]), lifespan)
	for _, name := range s.Materials {
		percent, err := numeric(record, MaterialField(name))
		if err != nil {
			return nil, err
		}

		values = append(values, percent)
	}

	categorical := make([]string, 0, len(s.CategoricalColumns))
	for _, column := range s.CategoricalColumns {
		v, ok := record[column]
		if !ok || v == nil {
			categorical = append(categorical, "")
			continue
		}

		str, err := cast.ToStringE(v)
		if err != nil {
			return nil, &InvalidFieldError{Field: column, Value: v, Err: err}
		}

		categorical = append(categorical, str)
	}

	return &Record{Numeric: values, Categorical: categorical}, nil
}

// Flag converts a boolean-like value to 1 or 0. True, non-zero numbers and the
// strings "yes", "y", "true" and "1" are 1, everything else is 0.
func Flag(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case bool:
		if val {
			return 1
		}

		return 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "yes", "y", "true", "1":
			return 1
		}

		return 0
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || f == 0 {
		return 0
	}

	return 1
}

// numeric reads an optional numeric field, absent and nil values are 0.
func numeric(record map[string]any, field string) (float64, error) {
	v, ok := record[field]
	if !ok || v == nil {
		return 0, nil
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &InvalidFieldError{Field: field, Value: v, Err: err}
	}

	return f, nil
}
