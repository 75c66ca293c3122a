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

package service

import (
	"time"

	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/pkg/feature"
	"github.com/greenbridge/ecoscore/pkg/predictor"
)

// Context is an immutable snapshot of a loaded model. A reload publishes a new
// context, a context is never mutated after it is published.
type Context struct {
	// Schema renders raw records in the order the predictor was fitted on.
	Schema *feature.Schema

	// Predictor maps rendered records to predictions.
	Predictor predictor.Predictor

	// Artifact is the persisted pipeline, nil when the predictor is not an artifact.
	Artifact *predictor.Artifact

	// Path of the artifact.
	Path string

	// LoadedAt is the time the context was built.
	LoadedAt time.Time
}

// NewContext returns a context of a schema and its predictor.
func NewContext(schema *feature.Schema, p predictor.Predictor) (*Context, error) {
	if schema == nil {
		return nil, errors.New("context requires a schema")
	}

	if p == nil {
		return nil, errors.New("context requires a predictor")
	}

	return &Context{
		Schema:    schema,
		Predictor: p,
		LoadedAt:  time.Now(),
	}, nil
}

// LoadContext loads the artifact at path into a context.
func LoadContext(path string) (*Context, error) {
	artifact, err := predictor.Load(path)
	if err != nil {
		return nil, err
	}

	c, err := NewContext(artifact.Pipeline.Schema, artifact.Pipeline)
	if err != nil {
		return nil, err
	}
	c.Artifact = artifact
	c.Path = path

	return c, nil
}
