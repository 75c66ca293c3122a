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
	"regexp"
	"strconv"
	"strings"
)

const (
	// Separator splits a composition string into segments.
	Separator = ","
)

// segmentPattern matches "<word-sequence> <number>%" at the start of a segment,
// text after the percent sign is tolerated.
var segmentPattern = regexp.MustCompile(`^([\p{L}\p{N}_\s]+)\s+(\d+\.?\d*)%`)

// Composition maps a material name to its percentage.
type Composition map[string]float64

// Names returns material names of the composition in no particular order.
func (c Composition) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}

	return names
}

// Result is the outcome of parsing a composition string.
type Result struct {
	// Materials is the parsed composition.
	Materials Composition

	// Order is the order in which material names first appear in the text.
	Order []string

	// Skipped is the number of non-blank segments that did not match.
	Skipped int
}

// Parse parses a free-text material composition such as "Plastic 70%, Glass 10%".
//
// Segments that do not match "<name> <percent>%" are skipped and counted, they are
// never an error. Percentages of repeated names are summed. Blank segments are
// ignored entirely.
func Parse(text string) *Result {
	result := &Result{Materials: Composition{}}
	for _, segment := range strings.Split(text, Separator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		matches := segmentPattern.FindStringSubmatch(segment)
		if matches == nil {
			result.Skipped++
			continue
		}

		name := strings.TrimSpace(matches[1])
		percent, err := strconv.ParseFloat(matches[2], 64)
		if err != nil || name == "" {
			result.Skipped++
			continue
		}

		if _, ok := result.Materials[name]; !ok {
			result.Order = append(result.Order, name)
		}
		result.Materials[name] += percent
	}

	return result
}

// Extract returns the composition of text, see Parse.
func Extract(text string) Composition {
	return Parse(text).Materials
}
