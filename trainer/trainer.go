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

package trainer

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/predictor"
	"github.com/greenbridge/ecoscore/pkg/workpath"
	"github.com/greenbridge/ecoscore/trainer/config"
	"github.com/greenbridge/ecoscore/trainer/storage"
	"github.com/greenbridge/ecoscore/trainer/training"
)

type Trainer struct {
	// Trainer configuration.
	config *config.Config

	// Storage interface.
	storage storage.Storage

	// Training interface.
	training training.Training

	// output is the resolved artifact path.
	output string
}

// New returns a trainer over the configured dataset. Relative paths resolve
// inside the data directory when one is configured.
func New(cfg *config.Config, d workpath.Workpath, options ...training.Option) *Trainer {
	t := &Trainer{config: cfg}

	dataset, output := cfg.Dataset, cfg.Output
	if cfg.Server.DataDir != "" {
		dataset, output = d.ModelPath(dataset), d.ModelPath(output)
	}
	t.output = output

	// Initialize Storage.
	t.storage = storage.New(dataset)

	// Initialize training.
	t.training = training.New(cfg.Training, t.storage, options...)
	return t
}

// Output returns the path the artifact is written to.
func (t *Trainer) Output() string {
	return t.output
}

// Run trains the pipeline and saves its artifact.
func (t *Trainer) Run(ctx context.Context) (*predictor.Artifact, error) {
	artifact, err := t.training.Train(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}

	if err := predictor.Save(t.output, artifact); err != nil {
		return nil, errors.Wrapf(err, "save artifact to %s", t.output)
	}

	output, err := filepath.Abs(t.output)
	if err != nil {
		output = t.output
	}
	logger.Infof("model trained on %d rows and saved to %s", artifact.Summary.TrainRows, output)
	return artifact, nil
}
