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

package inference

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/inference/config"
	"github.com/greenbridge/ecoscore/inference/metrics"
	"github.com/greenbridge/ecoscore/inference/router"
	"github.com/greenbridge/ecoscore/inference/service"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
)

type Server struct {
	// Server configuration.
	config *config.Config

	// Loader of the model artifact.
	loader *service.Loader

	// REST server.
	restServer *http.Server

	// Metrics server.
	metricsServer *http.Server
}

// New returns the inference server, the model is loaded when it starts serving.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{config: cfg}

	// Initialize loader.
	s.loader = service.NewLoader(cfg.Model.Path, service.LoadContext)

	// Initialize router.
	r := router.Init(cfg, service.New(s.loader))

	// Initialize REST server.
	s.restServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Initialize metrics server.
	if cfg.Metrics.Enable {
		s.metricsServer = metrics.New(&cfg.Metrics)
	}

	return s, nil
}

func (s *Server) Serve() error {
	// Load model, requests are answered with 503 until a model is loaded.
	if err := s.loader.Load(); err != nil {
		logger.Errorf("load model from %s failed, predictions are unavailable: %s", s.loader.Path(), err.Error())
	}

	// Started metrics server.
	if s.metricsServer != nil {
		go func() {
			logger.Infof("started metrics server at %s", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil {
				if err == http.ErrServerClosed {
					return
				}
				logger.Fatalf("metrics server closed unexpect: %+v", err)
			}
		}()
	}

	// Started REST server.
	logger.Infof("started rest server at %s", s.restServer.Addr)
	if err := s.restServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "rest server closed unexpect")
	}

	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	// Stop metrics server.
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			logger.Errorf("metrics server failed to stop: %+v", err)
		}
		logger.Info("metrics server closed under request")
	}

	// Stop REST server.
	if err := s.restServer.Shutdown(ctx); err != nil {
		logger.Errorf("rest server failed to stop: %+v", err)
	}
	logger.Info("rest server closed under request")
}

// Reload loads the model artifact again.
func (s *Server) Reload() error {
	return s.loader.Load()
}
