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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/greenbridge/ecoscore/inference/config"
)

func TestMetrics_New(t *testing.T) {
	assert := assert.New(t)
	svr := New(&config.MetricsConfig{Enable: true, Addr: ":9002"})
	assert.Equal(":9002", svr.Addr)

	PredictCount.WithLabelValues(PredictStatusFallback).Inc()

	w := httptest.NewRecorder()
	svr.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	assert.NoError(err)
	assert.Contains(string(body), "ecoscore_inference_version")
	assert.Contains(string(body), `ecoscore_inference_predict_total{status="fallback"}`)
	assert.GreaterOrEqual(testutil.ToFloat64(PredictCount.WithLabelValues(PredictStatusFallback)), float64(1))
}
