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

package lookup

import (
	"context"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/consts"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/pkg/errors"
)

// Options controls a single lookup
type Options struct {
	// TTLDays is the max age of a usable cache entry. Zero or less disables expiry.
	TTLDays int
	// BypassCache skips the cache read. A found product is still written back.
	BypassCache bool
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{TTLDays: consts.DefaultLookupTTLDays}
}

// Service looks products up in the cache, then in each provider in order
type Service struct {
	Cache     *Cache
	Providers []products.Provider
}

// Lookup returns the product for the code, or nil if no provider knows it.
// Provider failures are not returned; the next provider is tried instead.
func (s *Service) Lookup(ctx context.Context, code string, opts Options) (*products.Product, error) {
	clean := strings.TrimSpace(code)
	if clean == "" {
		return nil, nil
	}

	if !opts.BypassCache {
		cached, ok, err := s.Cache.Get(clean, opts.TTLDays)
		if err != nil {
			return nil, errors.Wrap(err, "reading the cache")
		}
		if ok {
			log.Debug("cache hit for %s\n", clean)
			return cached, nil
		}
	}

	for _, p := range s.Providers {
		info, err := p.Fetch(ctx, clean)
		if err != nil {
			log.Debug("provider %s failed: %s\n", p.Name(), err.Error())
			continue
		}
		if info == nil || info.Name == "" {
			continue
		}

		if err := s.Cache.Put(clean, info); err != nil {
			return nil, errors.Wrap(err, "caching the product")
		}

		return info, nil
	}

	return nil, nil
}
