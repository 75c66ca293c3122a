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

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/mcuadros/go-gin-prometheus"

	"github.com/greenbridge/ecoscore/inference/config"
	"github.com/greenbridge/ecoscore/inference/handlers"
	"github.com/greenbridge/ecoscore/inference/middlewares"
	"github.com/greenbridge/ecoscore/inference/service"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
)

const (
	PrometheusSubsystemName = "ecoscore_inference_http"
)

func Init(cfg *config.Config, service service.Service) *gin.Engine {
	// Set mode.
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	h := handlers.New(service)

	// Prometheus metrics.
	p := ginprometheus.NewPrometheus(PrometheusSubsystemName)
	// URL removes query string.
	// Prometheus metrics need to reduce label,
	// refer to https://prometheus.io/docs/practices/instrumentation/#do-not-overuse-labels.
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.Request.URL.Path
	}
	p.Use(r)

	// CORS
	corsConfig := cors.DefaultConfig()
	if cfg.CORS.AllowAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.ExposeHeaders = []string{middlewares.RequestID}

	// Middleware
	r.Use(ginzap.Ginzap(logger.GinLogger.Desugar(), time.RFC3339, true))
	r.Use(ginzap.CustomRecoveryWithZap(logger.GinLogger.Desugar(), true, middlewares.Recovery))
	r.Use(cors.New(corsConfig))
	r.Use(middlewares.RequestIDs())
	r.Use(middlewares.Error())

	// Router
	r.GET("/health", h.GetHealth)
	r.POST("/predict", h.Predict)
	r.GET("/schema", h.GetSchema)

	if cfg.Model.AllowReload {
		admin := r.Group("/admin")
		admin.POST("/reload", h.Reload)
	}

	return r
}
