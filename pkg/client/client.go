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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-http-utils/headers"
	"github.com/pkg/errors"

	"github.com/greenbridge/ecoscore/inference/service"
	"github.com/greenbridge/ecoscore/pkg/retry"
)

const (
	// DefaultTimeout is the default timeout of a request.
	DefaultTimeout = 10 * time.Second

	// ContentTypeJSON is the content type of requests and responses.
	ContentTypeJSON = "application/json"
)

// StatusError is returned when the inference service answers with an error status.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference service returned %d: %s", e.StatusCode, e.Detail)
}

// IsUnavailable reports whether err means the service has no model loaded.
func IsUnavailable(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable
}

// IsBadRequest reports whether err means the record was rejected.
func IsBadRequest(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest
}

// Client is the client of the inference service.
type Client interface {
	// Predict estimates the footprint of a raw product record.
	Predict(context.Context, map[string]any) (*service.Result, error)

	// Health checks the service.
	Health(context.Context) (*service.Health, error)

	// Schema returns the columns the loaded model expects.
	Schema(context.Context) (*service.Schema, error)

	// Reload asks the service to load its model again.
	Reload(context.Context) error
}

type client struct {
	baseURL    string
	httpClient *http.Client

	// Retry configuration, a single attempt by default.
	maxAttempts int
	initBackoff time.Duration
	maxBackoff  time.Duration
}

// Option is a functional option for configuring the client.
type Option func(c *client)

// WithHTTPClient sets the http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of a request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry retries requests failed by the transport or answered with 503.
func WithRetry(maxAttempts int, initBackoff, maxBackoff time.Duration) Option {
	return func(c *client) {
		c.maxAttempts = maxAttempts
		c.initBackoff = initBackoff
		c.maxBackoff = maxBackoff
	}
}

// New returns a client of the inference service at baseURL, like http://127.0.0.1:8001.
func New(baseURL string, options ...Option) Client {
	c := &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxAttempts: 1,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}

	return c
}

// Predict implements Client.
func (c *client) Predict(ctx context.Context, record map[string]any) (*service.Result, error) {
	var result service.Result
	if err := c.do(ctx, http.MethodPost, "/predict", record, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Health implements Client.
func (c *client) Health(ctx context.Context) (*service.Health, error) {
	var health service.Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}

	return &health, nil
}

// Schema implements Client.
func (c *client) Schema(ctx context.Context) (*service.Schema, error) {
	var schema service.Schema
	if err := c.do(ctx, http.MethodGet, "/schema", nil, &schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

// Reload implements Client.
func (c *client) Reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/reload", nil, nil)
}

func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		payload = data
	}

	_, _, err := retry.Run(ctx, c.initBackoff, c.maxBackoff, c.maxAttempts, func() (any, bool, error) {
		err := c.send(ctx, method, path, payload, out)
		if err == nil {
			return nil, false, nil
		}

		return nil, !retryable(err), err
	})

	return err
}

// retryable reports whether a failed request may succeed when sent again.
func retryable(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return IsUnavailable(err)
}

func (c *client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(headers.Accept, ContentTypeJSON)
	if payload != nil {
		req.Header.Set(headers.ContentType, ContentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode/100 != 2 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(data, &detail); err == nil && detail.Detail != "" {
			statusErr.Detail = detail.Detail
		}

		return statusErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode response")
	}

	return nil
}
