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

package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/greenbridge/ecoscore/cmd/dependency/base"
	"github.com/greenbridge/ecoscore/pkg/feature"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Dataset is the path of the training CSV.
	Dataset string `yaml:"dataset" mapstructure:"dataset" validate:"required"`

	// Output is the path the artifact is written to.
	Output string `yaml:"output" mapstructure:"output" validate:"required"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Training configuration.
	Training TrainingConfig `yaml:"training" mapstructure:"training"`
}

type ServerConfig struct {
	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation (default: 200)
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize" validate:"gte=0"`

	// Maximum number of days to retain old log files (default: 7)
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge" validate:"gte=0"`

	// Maximum number of old log files to keep (default: 20)
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups" validate:"gte=0"`

	// Server storage data directory.
	DataDir string `yaml:"dataDir" mapstructure:"dataDir"`
}

type TrainingConfig struct {
	// TopK is the number of most frequent materials kept as features.
	TopK int `yaml:"topK" mapstructure:"topK" validate:"gt=0"`

	// TestPercent is the share of rows held out for evaluation.
	TestPercent float64 `yaml:"testPercent" mapstructure:"testPercent" validate:"gt=0,lt=1"`

	// Seed makes the split and the fitted models reproducible.
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// LearningRate is the step size of gradient descent.
	LearningRate float64 `yaml:"learningRate" mapstructure:"learningRate" validate:"gt=0"`

	// Epochs is the number of passes over the training split.
	Epochs int `yaml:"epochs" mapstructure:"epochs" validate:"gt=0"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Options: base.Options{
			PProfPort: -1,
		},
		Output: DefaultOutput,
		Server: ServerConfig{
			LogMaxSize:    DefaultLogRotateMaxSize,
			LogMaxAge:     DefaultLogRotateMaxAge,
			LogMaxBackups: DefaultLogRotateMaxBackups,
		},
		Training: TrainingConfig{
			TopK:         DefaultTopK,
			TestPercent:  DefaultTestPercent,
			Seed:         DefaultSeed,
			LearningRate: DefaultLearningRate,
			Epochs:       DefaultEpochs,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	errs := base.ValidateStruct(cfg)

	if cfg.Training.TopK > feature.MaxTopK {
		errs = multierror.Append(errs, fmt.Errorf("training requires parameter topK at most %d", feature.MaxTopK))
	}

	return errs.ErrorOrNil()
}

// Convert fills parameters derived from others.
func (cfg *Config) Convert() error {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	return nil
}
