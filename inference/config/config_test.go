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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/greenbridge/ecoscore/cmd/dependency/base"
)

func TestConfig_Load(t *testing.T) {
	config := &Config{
		Options: base.Options{
			Console:   true,
			Verbose:   true,
			PProfPort: 9999,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            9001,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 3 * time.Second,
			LogDir:          "foo",
			LogMaxSize:      512,
			LogMaxAge:       5,
			LogMaxBackups:   3,
			DataDir:         "bar",
		},
		Model: ModelConfig{
			Path:        "models/eco_model.json",
			AllowReload: true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"https://shop.example.com"},
		},
		Metrics: MetricsConfig{
			Enable: true,
			Addr:   ":9002",
		},
	}

	inferenceConfigYAML := &Config{}
	contentYAML, _ := os.ReadFile("./testdata/inference.yaml")
	if err := yaml.Unmarshal(contentYAML, &inferenceConfigYAML); err != nil {
		t.Fatal(err)
	}
	assert := assert.New(t)
	assert.EqualValues(config, inferenceConfigYAML)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		mock   func(cfg *Config)
		expect func(t *testing.T, err error)
	}{
		{
			name:   "valid config",
			config: New(),
			mock:   func(cfg *Config) {},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:   "server requires parameter host",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Server.Host = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "requires parameter server.host")
			},
		},
		{
			name:   "server port out of range",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Server.Port = 70000
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "parameter server.port must satisfy lte=65535")
			},
		},
		{
			name:   "metrics requires parameter addr",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Metrics.Enable = true
				cfg.Metrics.Addr = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "requires parameter metrics.addr")
			},
		},
		{
			name:   "metrics disabled without addr",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Metrics.Addr = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:   "cors requires origins",
			config: New(),
			mock: func(cfg *Config) {
				cfg.CORS.AllowOrigins = nil
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "parameter cors.allowOrigins requires at least 1 values")
			},
		},
		{
			name:   "cors mixes wildcard with origins",
			config: New(),
			mock: func(cfg *Config) {
				cfg.CORS.AllowOrigins = []string{"*", "https://shop.example.com"}
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "cors allowOrigins can not mix * with explicit origins")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.config.Convert(); err != nil {
				t.Fatal(err)
			}

			tc.mock(tc.config)
			tc.expect(t, tc.config.Validate())
		})
	}
}

func TestConfig_Convert(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(cfg *Config)
		expect func(t *testing.T, cfg *Config)
	}{
		{
			name: "default model path",
			mock: func(cfg *Config) {
				cfg.Model.Path = ""
			},
			expect: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultModelPath, cfg.Model.Path)
			},
		},
		{
			name: "relative model path resolves in data dir",
			mock: func(cfg *Config) {
				cfg.Server.DataDir = "/var/lib/ecoscore"
			},
			expect: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/var/lib/ecoscore/eco_model.json", cfg.Model.Path)
			},
		},
		{
			name: "absolute model path is kept",
			mock: func(cfg *Config) {
				cfg.Server.DataDir = "/var/lib/ecoscore"
				cfg.Model.Path = "/models/eco_model.json"
			},
			expect: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/models/eco_model.json", cfg.Model.Path)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mock(cfg)
			assert.NoError(t, cfg.Convert())
			tc.expect(t, cfg)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := New()
	assert.Equal(t, "0.0.0.0:8001", cfg.Server.Addr())
	assert.True(t, cfg.CORS.AllowAllOrigins())
}
