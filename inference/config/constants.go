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

import "time"

const (
	// DefaultServerHost is the default host the inference server listens on.
	DefaultServerHost = "0.0.0.0"

	// DefaultServerPort is the default port the inference server listens on.
	DefaultServerPort = 8001

	// DefaultServerReadTimeout is the default timeout of reading a request.
	DefaultServerReadTimeout = 10 * time.Second

	// DefaultServerWriteTimeout is the default timeout of writing a response.
	DefaultServerWriteTimeout = 10 * time.Second

	// DefaultServerShutdownTimeout is the default time allowed to drain requests on stop.
	DefaultServerShutdownTimeout = 5 * time.Second
)

const (
	// DefaultModelPath is the default path of the model artifact.
	DefaultModelPath = "eco_model.json"
)

const (
	// DefaultMetricsAddr is the default address of the metrics server.
	DefaultMetricsAddr = ":8002"
)

var (
	// DefaultCORSAllowOrigins allows any origin.
	DefaultCORSAllowOrigins = []string{"*"}
)

const (
	// DefaultLogRotateMaxSize is the default maximum size in megabytes of log files before rotation.
	DefaultLogRotateMaxSize = 200

	// DefaultLogRotateMaxAge is the default number of days to retain old log files.
	DefaultLogRotateMaxAge = 7

	// DefaultLogRotateMaxBackups is the default number of old log files to keep.
	DefaultLogRotateMaxBackups = 20
)
