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

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-http-utils/headers"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/greenbridge/ecoscore/inference/service"
	"github.com/greenbridge/ecoscore/pkg/feature"
)

const mockBaseURL = "http://inference.example.com"

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	httpClient *http.Client
	client     Client
}

func (suite *ClientTestSuite) SetupSuite() {
	suite.httpClient = &http.Client{}
	suite.client = New(mockBaseURL+"/", WithHTTPClient(suite.httpClient), WithTimeout(time.Second))
	httpmock.ActivateNonDefault(suite.httpClient)
}

func (suite *ClientTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *ClientTestSuite) SetupTest() {
	httpmock.Reset()
}

func (suite *ClientTestSuite) TestPredict() {
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/predict", func(req *http.Request) (*http.Response, error) {
		suite.Equal(ContentTypeJSON, req.Header.Get(headers.ContentType))

		var record map[string]any
		if err := json.NewDecoder(req.Body).Decode(&record); err != nil {
			return nil, err
		}
		suite.Equal(1.5, record[feature.WeightField])

		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"carbon_footprint": 12.35,
			"eco_score":        0.72,
			"isEcoFriendly":    true,
			"status":           "success",
		})
	})

	result, err := suite.client.Predict(context.Background(), map[string]any{feature.WeightField: 1.5, feature.DistanceField: 300})
	suite.NoError(err)
	suite.Equal(&service.Result{CarbonFootprint: 12.35, EcoScore: 0.72, EcoFriendly: true, Status: service.StatusSuccess}, result)
}

func (suite *ClientTestSuite) TestPredictFallback() {
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/predict", httpmock.NewStringResponder(http.StatusOK,
		`{"carbon_footprint":3.75,"eco_score":0.5,"isEcoFriendly":false,"status":"fallback","warning":"ML model failed: boom"}`))

	result, err := suite.client.Predict(context.Background(), map[string]any{feature.WeightField: 1.5, feature.DistanceField: 300})
	suite.NoError(err)
	suite.Equal(service.StatusFallback, result.Status)
	suite.Equal("ML model failed: boom", result.Warning)
}

func (suite *ClientTestSuite) TestPredictBadRequest() {
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/predict", httpmock.NewStringResponder(http.StatusBadRequest,
		`{"detail":"Missing required fields: Distance (km)"}`))

	_, err := suite.client.Predict(context.Background(), map[string]any{feature.WeightField: 1.5})
	suite.True(IsBadRequest(err))
	suite.False(IsUnavailable(err))
	suite.EqualError(err, "inference service returned 400: Missing required fields: Distance (km)")
}

func (suite *ClientTestSuite) TestPredictUnavailable() {
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/predict", httpmock.NewStringResponder(http.StatusServiceUnavailable,
		`{"detail":"ML model is not available. Please try again later."}`))

	_, err := suite.client.Predict(context.Background(), map[string]any{feature.WeightField: 1.5, feature.DistanceField: 300})
	suite.True(IsUnavailable(err))
}

func (suite *ClientTestSuite) TestPredictUnexpectedBody() {
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/predict", httpmock.NewStringResponder(http.StatusInternalServerError, `oops`))

	_, err := suite.client.Predict(context.Background(), map[string]any{})
	var statusErr *StatusError
	suite.ErrorAs(err, &statusErr)
	suite.Equal("Internal Server Error", statusErr.Detail)
}

func (suite *ClientTestSuite) TestHealth() {
	httpmock.RegisterResponder(http.MethodGet, mockBaseURL+"/health", httpmock.NewStringResponder(http.StatusOK,
		`{"status":"healthy","model_loaded":true,"message":"Eco ML Server is running"}`))

	health, err := suite.client.Health(context.Background())
	suite.NoError(err)
	suite.Equal(&service.Health{Status: "healthy", ModelLoaded: true, Message: "Eco ML Server is running"}, health)
}

func (suite *ClientTestSuite) TestSchema() {
	httpmock.RegisterResponder(http.MethodGet, mockBaseURL+"/schema", httpmock.NewStringResponder(http.StatusOK,
		`{"materials":["Cotton"],"required_fields":["Weight (kg)","Distance (km)"]}`))

	schema, err := suite.client.Schema(context.Background())
	suite.NoError(err)
	suite.Equal([]string{"Cotton"}, schema.Materials)
}

func (suite *ClientTestSuite) TestReload() {
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/admin/reload", httpmock.NewStringResponder(http.StatusNotFound, `404 page not found`))

	err := suite.client.Reload(context.Background())
	suite.EqualError(err, "inference service returned 404: Not Found")
}

func (suite *ClientTestSuite) TestTransportError() {
	_, err := suite.client.Health(context.Background())
	suite.Error(err)
}

func (suite *ClientTestSuite) TestRetryUnavailable() {
	var calls int
	httpmock.RegisterResponder(http.MethodGet, mockBaseURL+"/health", func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return httpmock.NewStringResponse(http.StatusServiceUnavailable, `{"detail":"ML model is not available. Please try again later."}`), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"status":"healthy","model_loaded":true,"message":"Eco ML Server is running"}`), nil
	})

	c := New(mockBaseURL, WithHTTPClient(suite.httpClient), WithRetry(3, time.Millisecond, 5*time.Millisecond))
	health, err := c.Health(context.Background())
	suite.NoError(err)
	suite.True(health.ModelLoaded)
	suite.Equal(3, calls)
}

func (suite *ClientTestSuite) TestRetrySkipsBadRequest() {
	var calls int
	httpmock.RegisterResponder(http.MethodPost, mockBaseURL+"/predict", func(req *http.Request) (*http.Response, error) {
		calls++
		return httpmock.NewStringResponse(http.StatusBadRequest, `{"detail":"Missing required fields: Distance (km)"}`), nil
	})

	c := New(mockBaseURL, WithHTTPClient(suite.httpClient), WithRetry(3, time.Millisecond, 5*time.Millisecond))
	_, err := c.Predict(context.Background(), map[string]any{feature.WeightField: 1.5})
	suite.True(IsBadRequest(err))
	suite.Equal(1, calls)
}
