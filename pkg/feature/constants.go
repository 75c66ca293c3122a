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

const (
	// WeightField is the product weight in kilograms, it is required.
	WeightField = "Weight (kg)"

	// DistanceField is the transport distance in kilometers, it is required.
	DistanceField = "Distance (km)"

	// RecyclableField is 1 when the product is recyclable.
	RecyclableField = "Recyclable"

	// RepairableField is 1 when the product is repairable.
	RepairableField = "Repairable"

	// LifespanField is the expected lifespan in years.
	LifespanField = "Lifespan (yrs)"

	// CategoryField is the product category.
	CategoryField = "Category"

	// SubcategoryField is the product subcategory.
	SubcategoryField = "Subcategory"

	// PackagingField is the packaging used by the product.
	PackagingField = "Packaging Used"

	// MaterialFieldPrefix prefixes a material name to form its column.
	MaterialFieldPrefix = "Material_"
)

const (
	// DefaultTopK is the default number of materials frozen into a schema.
	DefaultTopK = 10

	// MaxTopK is the upper bound of materials a schema may carry.
	MaxTopK = 256
)

var (
	// BaseNumericColumns are the numeric columns preceding material columns.
	BaseNumericColumns = []string{WeightField, DistanceField, RecyclableField, RepairableField, LifespanField}

	// CategoricalColumns are the categorical columns in schema order.
	CategoricalColumns = []string{CategoryField, SubcategoryField, PackagingField}

	// RequiredFields must be present in every record.
	RequiredFields = []string{WeightField, DistanceField}
)

// MaterialField returns the column name of a material.
func MaterialField(name string) string {
	return MaterialFieldPrefix + name
}
