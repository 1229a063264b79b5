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
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

type fakeProvider struct {
	name    string
	product *products.Product
	err     error
	calls   int
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) Fetch(ctx context.Context, upc string) (*products.Product, error) {
	p.calls++
	return p.product, p.err
}

func setupService(t *testing.T, providers ...products.Provider) (*Service, *database.DB) {
	db := database.InitTestMemoryDB(t)

	return &Service{
		Cache:     NewCache(db, clock.NewMock()),
		Providers: providers,
	}, db
}

func TestLookup(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		p := &fakeProvider{name: "a", product: &products.Product{Name: "From Provider"}}
		s, _ := setupService(t, p)
		assert.NilError(t, s.Cache.Put("123", &products.Product{UPC: "123", Name: "Cached Item"}), "seeding cache")

		got, err := s.Lookup(context.Background(), "123", Options{TTLDays: 7})
		assert.NilError(t, err, "looking up")
		assert.Equal(t, got.Name, "Cached Item", "Name mismatch")
		assert.Equal(t, p.calls, 0, "provider call count mismatch")
	})

	t.Run("first provider with a name wins", func(t *testing.T) {
		a := &fakeProvider{name: "a", err: &products.ProviderError{Provider: "a", Err: errors.New("boom")}}
		b := &fakeProvider{name: "b"}
		c := &fakeProvider{name: "c", product: &products.Product{UPC: "333", Name: ""}}
		d := &fakeProvider{name: "d", product: &products.Product{UPC: "333", Name: "Instant Noodles"}}
		e := &fakeProvider{name: "e", product: &products.Product{UPC: "333", Name: "Other"}}
		s, db := setupService(t, a, b, c, d, e)

		got, err := s.Lookup(context.Background(), " 333 ", DefaultOptions())
		assert.NilError(t, err, "looking up")
		assert.Equal(t, got.Name, "Instant Noodles", "Name mismatch")
		assert.Equal(t, e.calls, 0, "later provider should not be called")

		assert.Equal(t, database.MustCount(t, "counting cache", db, "upc_cache", "upc = ?", "333"), 1, "cache entry mismatch")
	})

	t.Run("no provider knows the code", func(t *testing.T) {
		a := &fakeProvider{name: "a"}
		b := &fakeProvider{name: "b", err: errors.New("UPCItemDB 500")}
		s, db := setupService(t, a, b)

		got, err := s.Lookup(context.Background(), "404404404", DefaultOptions())
		assert.NilError(t, err, "looking up")
		assert.Equal(t, got == nil, true, "product should be nil")
		assert.Equal(t, database.MustCount(t, "counting cache", db, "upc_cache", ""), 0, "cache should be empty")
	})

	t.Run("bypass cache", func(t *testing.T) {
		p := &fakeProvider{name: "a", product: &products.Product{UPC: "777", Name: "Coffee"}}
		s, _ := setupService(t, p)
		assert.NilError(t, s.Cache.Put("777", &products.Product{UPC: "will-not-be-used", Name: "Stale"}), "seeding cache")

		got, err := s.Lookup(context.Background(), "777", Options{BypassCache: true})
		assert.NilError(t, err, "looking up")
		assert.Equal(t, got.Name, "Coffee", "Name mismatch")
		assert.Equal(t, p.calls, 1, "provider call count mismatch")

		cached, ok, err := s.Cache.Get("777", 0)
		assert.NilError(t, err, "getting cache")
		assert.Equal(t, ok, true, "found mismatch")
		assert.Equal(t, cached.Name, "Coffee", "cache should be refreshed")
	})

	t.Run("empty code", func(t *testing.T) {
		p := &fakeProvider{name: "a", product: &products.Product{Name: "X"}}
		s, _ := setupService(t, p)

		got, err := s.Lookup(context.Background(), "   ", DefaultOptions())
		assert.NilError(t, err, "looking up")
		assert.Equal(t, got == nil, true, "product should be nil")
		assert.Equal(t, p.calls, 0, "provider call count mismatch")
	})
}
