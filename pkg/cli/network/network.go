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

package network

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// State is a snapshot of the device connectivity
type State struct {
	Connected bool
	// InternetReachable is nil when reachability is unknown
	InternetReachable *bool
}

// Online reports whether a sync may proceed. Unknown reachability counts as reachable.
func (s State) Online() bool {
	if !s.Connected {
		return false
	}

	return s.InternetReachable == nil || *s.InternetReachable
}

// Prober reports the current connectivity
type Prober interface {
	Probe(ctx context.Context) (State, error)
}

// Static is a Prober that always reports the same state
type Static State

// Probe returns the fixed state
func (s Static) Probe(ctx context.Context) (State, error) {
	return State(s), nil
}

// DefaultProbeTimeout is the dial timeout used when Probe.Timeout is zero
const DefaultProbeTimeout = 3 * time.Second

// Probe checks connectivity by dialing the host of Endpoint
type Probe struct {
	Endpoint string
	Timeout  time.Duration

	dial func(ctx context.Context, network, address string) (net.Conn, error)
}

func hostPort(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parsing endpoint")
	}
	if u.Host == "" {
		return "", errors.Errorf("endpoint '%s' has no host", endpoint)
	}

	if u.Port() != "" {
		return u.Host, nil
	}

	port := "443"
	if u.Scheme == "http" {
		port = "80"
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}

// Probe dials the endpoint. A failed DNS lookup means the device has no usable
// network; any other dial failure means the network is up but the internet is
// not reachable.
func (p Probe) Probe(ctx context.Context) (State, error) {
	addr, err := hostPort(p.Endpoint)
	if err != nil {
		return State{}, err
	}

	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dial := p.dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}

	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return State{Connected: false}, nil
		}

		reachable := false
		return State{Connected: true, InternetReachable: &reachable}, nil
	}
	conn.Close()

	reachable := true
	return State{Connected: true, InternetReachable: &reachable}, nil
}
