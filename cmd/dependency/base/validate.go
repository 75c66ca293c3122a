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

package base

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var validate = newValidator()

// newValidator names fields by their yaml key, so errors read like the config file.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct checks validate tags of a config and collects every failure.
func ValidateStruct(cfg any) *multierror.Error {
	var errs *multierror.Error
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return multierror.Append(errs, err)
		}

		for _, fe := range fieldErrs {
			errs = multierror.Append(errs, fieldError(fe))
		}
	}

	return errs
}

// fieldError renders a validation failure with the yaml path of the field.
func fieldError(fe validator.FieldError) error {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("requires parameter %s", path)
	case "min":
		return fmt.Errorf("parameter %s requires at least %s values", path, fe.Param())
	}

	return fmt.Errorf("parameter %s must satisfy %s=%s", path, fe.Tag(), fe.Param())
}
