/* Copyright 2025 Foodlens Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package network provides the HTTP transport shared by remote collaborators
// and a connectivity probe
package network

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimitPerSecond is the max requests per second a client will make
	DefaultRateLimitPerSecond = 50
	// DefaultRateLimitBurst is the burst capacity for rate limiting
	DefaultRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client that makes at most perSecond
// requests per second, with the given burst
func NewRateLimitedHTTPClient(perSecond, burst int, timeout time.Duration) *http.Client {
	if perSecond <= 0 {
		perSecond = DefaultRateLimitPerSecond
	}
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	interval := time.Second / time.Duration(perSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), burst),
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
