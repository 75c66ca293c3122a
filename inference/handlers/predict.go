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

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/inference/service"
)

// @Summary Predict
// @Description Estimate the carbon footprint and eco score of a product
// @Tags Predict
// @Accept json
// @Produce json
// @Param Record body object true "Product record"
// @Success 200 {object} service.Result
// @Failure 400 {object} middlewares.ErrorResponse
// @Failure 500 {object} middlewares.ErrorResponse
// @Failure 503 {object} middlewares.ErrorResponse
// @Router /predict [post]
func (h *Handlers) Predict(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		ctx.Error(errors.Wrap(service.ErrInvalidBody, err.Error())) // nolint: errcheck
		return
	}

	result, err := h.service.Predict(ctx.Request.Context(), body)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// @Summary Get Schema
// @Description Get the columns the loaded model expects
// @Tags Model
// @Produce json
// @Success 200 {object} service.Schema
// @Failure 503 {object} middlewares.ErrorResponse
// @Router /schema [get]
func (h *Handlers) GetSchema(ctx *gin.Context) {
	schema, err := h.service.Schema()
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, schema)
}

// @Summary Reload Model
// @Description Load the model artifact again, the previous model keeps serving on failure
// @Tags Model
// @Produce json
// @Success 200 {object} service.Health
// @Failure 503 {object} middlewares.ErrorResponse
// @Router /admin/reload [post]
func (h *Handlers) Reload(ctx *gin.Context) {
	if err := h.service.Reload(ctx.Request.Context()); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, h.service.Health())
}
