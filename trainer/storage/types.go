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

package storage

import (
	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/material"
)

// Product is a row of the product dataset. Values are kept as text,
// conversion and row rejection happen when records are rendered.
type Product struct {
	// Name is the product name.
	Name string `csv:"Product Name"`

	// Category is the product category.
	Category string `csv:"Category"`

	// Subcategory is the product subcategory.
	Subcategory string `csv:"Subcategory"`

	// MaterialComposition is the free text composition, like "Cotton 60%, Polyester 40%".
	MaterialComposition string `csv:"Material Composition"`

	// Weight in kilograms.
	Weight string `csv:"Weight (kg)"`

	// Distance is the transport distance in kilometers.
	Distance string `csv:"Distance (km)"`

	// Recyclable is Yes or No.
	Recyclable string `csv:"Recyclable"`

	// Repairable is Yes or No.
	Repairable string `csv:"Repairable"`

	// Lifespan in years.
	Lifespan string `csv:"Lifespan (yrs)"`

	// Packaging is the packaging used.
	Packaging string `csv:"Packaging Used"`

	// CarbonFootprint is the labelled footprint in kg CO2e.
	CarbonFootprint string `csv:"Carbon Footprint (kg CO2e)"`

	// EcoScore is the labelled eco score on a 0-100 scale.
	EcoScore string `csv:"Eco Score"`
}

// Record returns the raw record of the product with its composition expanded
// into material fields. Empty cells are left out.
func (p *Product) Record() map[string]any {
	record := map[string]any{}
	set := func(field, value string) {
		if value != "" {
			record[field] = value
		}
	}

	set(feature.WeightField, p.Weight)
	set(feature.DistanceField, p.Distance)
	set(feature.RecyclableField, p.Recyclable)
	set(feature.RepairableField, p.Repairable)
	set(feature.LifespanField, p.Lifespan)
	set(feature.CategoryField, p.Category)
	set(feature.SubcategoryField, p.Subcategory)
	set(feature.PackagingField, p.Packaging)
	for name, percent := range material.Extract(p.MaterialComposition) {
		record[feature.MaterialField(name)] = percent
	}

	return record
}
