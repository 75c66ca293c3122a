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

package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterial_Parse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect func(t *testing.T, result *Result)
	}{
		{
			name: "well formed composition",
			text: "Plastic 70%, Glass 10%, Aluminum 20%",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"Plastic": 70, "Glass": 10, "Aluminum": 20}, result.Materials)
				assert.Equal([]string{"Plastic", "Glass", "Aluminum"}, result.Order)
				assert.Equal(0, result.Skipped)
			},
		},
		{
			name: "duplicate names accumulate",
			text: "Steel 40%, Plastic 10.5%, Steel 25.5%",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"Steel": 65.5, "Plastic": 10.5}, result.Materials)
				assert.Equal([]string{"Steel", "Plastic"}, result.Order)
			},
		},
		{
			name: "multi word names are trimmed",
			text: "  Insulation Foam   30% ,Drum Metal 70%",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"Insulation Foam": 30, "Drum Metal": 70}, result.Materials)
			},
		},
		{
			name: "names are case sensitive",
			text: "glass 10%, Glass 20%",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"glass": 10, "Glass": 20}, result.Materials)
			},
		},
		{
			name: "malformed segments are skipped",
			text: "Plastic 70, Glass ten%, 20%, Copper 5%",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"Copper": 5}, result.Materials)
				assert.Equal(3, result.Skipped)
			},
		},
		{
			name: "trailing text after percent is tolerated",
			text: "Cotton 95% organic, Elastane 5%",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"Cotton": 95, "Elastane": 5}, result.Materials)
			},
		},
		{
			name: "empty text",
			text: "",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Empty(result.Materials)
				assert.Equal(0, result.Skipped)
			},
		},
		{
			name: "blank segments are ignored",
			text: " , ,Paper 100%,",
			expect: func(t *testing.T, result *Result) {
				assert := assert.New(t)
				assert.Equal(Composition{"Paper": 100}, result.Materials)
				assert.Equal(0, result.Skipped)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, Parse(tc.text))
		})
	}
}

func TestMaterial_Extract(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Composition{"Silicon": 12.25}, Extract("Silicon 12.25%, nonsense"))
	assert.NotNil(Extract("nonsense"))
	assert.Empty(Extract("nonsense"))
}

func TestComposition_Names(t *testing.T) {
	assert := assert.New(t)
	assert.ElementsMatch([]string{"Plastic", "Glass"}, Composition{"Plastic": 1, "Glass": 2}.Names())
	assert.Empty(Composition{}.Names())
}
