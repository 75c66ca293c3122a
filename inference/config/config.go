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
	"net"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/greenbridge/ecoscore/cmd/dependency/base"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Model configuration.
	Model ModelConfig `yaml:"model" mapstructure:"model"`

	// CORS configuration.
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	// Server host.
	Host string `yaml:"host" mapstructure:"host" validate:"required"`

	// Server port.
	Port int `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"readTimeout" mapstructure:"readTimeout" validate:"gte=0"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"writeTimeout" mapstructure:"writeTimeout" validate:"gte=0"`

	// ShutdownTimeout is the maximum duration of draining requests on stop.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" mapstructure:"shutdownTimeout" validate:"gte=0"`

	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation (default: 200)
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize" validate:"gte=0"`

	// Maximum number of days to retain old log files (default: 7)
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge" validate:"gte=0"`

	// Maximum number of old log files to keep (default: 20)
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups" validate:"gte=0"`

	// Server storage data directory, a relative model path resolves in it.
	DataDir string `yaml:"dataDir" mapstructure:"dataDir"`
}

type ModelConfig struct {
	// Path of the model artifact.
	Path string `yaml:"path" mapstructure:"path" validate:"required"`

	// AllowReload enables the reload endpoint.
	AllowReload bool `yaml:"allowReload" mapstructure:"allowReload"`
}

type CORSConfig struct {
	// AllowOrigins is the list of origins a cross-domain request can be executed from.
	AllowOrigins []string `yaml:"allowOrigins" mapstructure:"allowOrigins" validate:"min=1"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required_if=Enable true"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Options: base.Options{
			PProfPort: -1,
		},
		Server: ServerConfig{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultServerReadTimeout,
			WriteTimeout:    DefaultServerWriteTimeout,
			ShutdownTimeout: DefaultServerShutdownTimeout,
			LogMaxSize:      DefaultLogRotateMaxSize,
			LogMaxAge:       DefaultLogRotateMaxAge,
			LogMaxBackups:   DefaultLogRotateMaxBackups,
		},
		Model: ModelConfig{
			Path: DefaultModelPath,
		},
		CORS: CORSConfig{
			AllowOrigins: DefaultCORSAllowOrigins,
		},
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   DefaultMetricsAddr,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	errs := base.ValidateStruct(cfg)

	if slices.Contains(cfg.CORS.AllowOrigins, "*") && len(cfg.CORS.AllowOrigins) > 1 {
		errs = multierror.Append(errs, fmt.Errorf("cors allowOrigins can not mix * with explicit origins"))
	}

	return errs.ErrorOrNil()
}

// Convert fills parameters derived from others.
func (cfg *Config) Convert() error {
	if cfg.Model.Path == "" {
		cfg.Model.Path = DefaultModelPath
	}

	if cfg.Server.DataDir != "" && !filepath.IsAbs(cfg.Model.Path) {
		cfg.Model.Path = filepath.Join(cfg.Server.DataDir, cfg.Model.Path)
	}

	return nil
}

// Addr returns the listen address of the inference server.
func (cfg *ServerConfig) Addr() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// AllowAllOrigins reports whether any origin is allowed.
func (cfg *CORSConfig) AllowAllOrigins() bool {
	return slices.Contains(cfg.AllowOrigins, "*")
}
