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

const (
	// DefaultOutput is the default path of the trained artifact.
	DefaultOutput = "eco_model.json"

	// DefaultTopK is the default number of materials frozen into the schema.
	DefaultTopK = 10

	// DefaultTestPercent is the default share of rows held out for evaluation.
	DefaultTestPercent = 0.2

	// DefaultSeed is the default seed of the split and the model initialization.
	DefaultSeed = 42

	// DefaultLearningRate is the default step size of gradient descent.
	DefaultLearningRate = 0.01

	// DefaultEpochs is the default number of passes over the training split.
	DefaultEpochs = 50
)

const (
	// DefaultLogRotateMaxSize is the default maximum size in megabytes of log files before rotation.
	DefaultLogRotateMaxSize = 200

	// DefaultLogRotateMaxAge is the default number of days to retain old log files.
	DefaultLogRotateMaxAge = 7

	// DefaultLogRotateMaxBackups is the default number of old log files to keep.
	DefaultLogRotateMaxBackups = 20
)
