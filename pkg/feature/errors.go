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
	"fmt"
	"strings"
)

// MissingFieldError reports required fields absent from a record.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
}

// InvalidFieldError reports a field whose value can not be used as a feature.
type InvalidFieldError struct {
	Field string
	Value any
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value %v of field %q: %v", e.Value, e.Field, e.Err)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Err
}
