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

package fallback

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"github.com/greenbridge/ecoscore/pkg/feature"
)

const (
	// DefaultWeight is used when the record carries no usable weight.
	DefaultWeight = 1

	// CarbonPerKilogram is the fixed carbon footprint coefficient per kilogram.
	CarbonPerKilogram = 2.5

	// BaseScore is the raw eco score of a product that is neither recyclable nor repairable.
	BaseScore = 50

	// RecyclableBonus is added to the raw eco score of recyclable products.
	RecyclableBonus = 20

	// RepairableBonus is added to the raw eco score of repairable products.
	RepairableBonus = 15

	// MinScore is the minimum raw eco score.
	MinScore = 0

	// MaxScore is the maximum raw eco score, it also normalizes the score to [0, 1].
	MaxScore = 100

	// EcoFriendlyThreshold is the minimum raw eco score of an eco friendly product.
	EcoFriendlyThreshold = 60
)

// Result is a heuristic estimation.
type Result struct {
	// CarbonFootprint is weight multiplied by CarbonPerKilogram. Unlike model
	// outputs it is not rounded to two decimals.
	CarbonFootprint float64

	// RawScore is the clamped eco score in [0, 100].
	RawScore float64

	// EcoScore is RawScore normalized to [0, 1].
	EcoScore float64

	// EcoFriendly reports whether RawScore reaches EcoFriendlyThreshold.
	EcoFriendly bool

	// Warning describes why the heuristic was used.
	Warning string
}

// Estimate computes a heuristic carbon footprint and eco score for a raw record.
// It never fails, unusable values fall back to defaults.
func Estimate(record map[string]any, cause error) *Result {
	weight := float64(DefaultWeight)
	if v, ok := record[feature.WeightField]; ok && v != nil {
		if w, err := cast.ToFloat64E(v); err == nil && !math.IsNaN(w) && !math.IsInf(w, 0) {
			weight = w
		}
	}

	raw := BaseScore + feature.Flag(record[feature.RecyclableField])*RecyclableBonus + feature.Flag(record[feature.RepairableField])*RepairableBonus
	raw = math.Min(MaxScore, math.Max(MinScore, raw))

	return &Result{
		CarbonFootprint: weight * CarbonPerKilogram,
		RawScore:        raw,
		EcoScore:        raw / MaxScore,
		EcoFriendly:     raw >= EcoFriendlyThreshold,
		Warning:         Warning(cause),
	}
}

// Warning renders the human readable reason of a fallback.
func Warning(cause error) string {
	if cause == nil {
		return "ML model failed: unknown error"
	}

	return fmt.Sprintf("ML model failed: %s", cause.Error())
}
