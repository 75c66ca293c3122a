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

package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/inference/metrics"
	"github.com/greenbridge/ecoscore/inference/service"
	logger "github.com/greenbridge/ecoscore/internal/ecolog"
	"github.com/greenbridge/ecoscore/pkg/feature"
)

const (
	// ModelUnavailableDetail is the detail of a request served without a model.
	ModelUnavailableDetail = "ML model is not available. Please try again later."

	// InvalidBodyDetail is the detail of a request whose body is not a json object.
	InvalidBodyDetail = "Invalid JSON data provided"

	// InternalErrorDetail is the detail of an unexpected failure.
	InternalErrorDetail = "Internal server error. Please try again later."
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		err := c.Errors.Last()
		if err == nil {
			return
		}

		log := logger.WithRequest(service.RequestID(c.Request.Context()))

		// Client input error handler
		var missing *feature.MissingFieldError
		if errors.As(err.Err, &missing) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Detail: missing.Error(),
			})
			return
		}

		if errors.Is(err.Err, service.ErrInvalidBody) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Detail: InvalidBodyDetail,
			})
			return
		}

		// Model unavailable error handler
		if errors.Is(err.Err, service.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Detail: ModelUnavailableDetail,
			})
			return
		}

		// Unknown error
		metrics.PredictFailureCount.WithLabelValues(metrics.FailureReasonInternal).Inc()
		log.Errorf("unexpected error: %s", err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Detail: InternalErrorDetail,
		})
	}
}

// Recovery answers a recovered panic with the generic internal error.
func Recovery(c *gin.Context, _ any) {
	metrics.PredictFailureCount.WithLabelValues(metrics.FailureReasonInternal).Inc()
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Detail: InternalErrorDetail,
	})
}
