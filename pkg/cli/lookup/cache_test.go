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
	"testing"
	"time"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/clock"
)

func TestCacheGet(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		payload   string
		fetchedAt string
		ttlDays   int
		found     bool
	}{
		{
			name:      "fresh",
			payload:   `{"upc": "012", "name": "Cached Item"}`,
			fetchedAt: "2024-02-15T12:00:00.000Z",
			ttlDays:   30,
			found:     true,
		},
		{
			name:      "expired",
			payload:   `{"upc": "012", "name": "Cached Item"}`,
			fetchedAt: "2024-01-01T12:00:00.000Z",
			ttlDays:   30,
			found:     false,
		},
		{
			name:      "expiry disabled",
			payload:   `{"upc": "012", "name": "Cached Item"}`,
			fetchedAt: "2020-01-01T00:00:00.000Z",
			ttlDays:   0,
			found:     true,
		},
		{
			name:      "negative ttl disables expiry",
			payload:   `{"upc": "012", "name": "Cached Item"}`,
			fetchedAt: "2020-01-01T00:00:00.000Z",
			ttlDays:   -1,
			found:     true,
		},
		{
			name:      "malformed json",
			payload:   `{"upc": `,
			fetchedAt: "2024-02-29T12:00:00.000Z",
			ttlDays:   30,
			found:     false,
		},
		{
			name:      "unparsable fetched_at",
			payload:   `{"upc": "012", "name": "Cached Item"}`,
			fetchedAt: "yesterday",
			ttlDays:   30,
			found:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			db := database.InitTestMemoryDB(t)
			c := clock.NewMock()
			c.SetNow(now)
			database.MustExec(t, "inserting cache entry", db, "INSERT INTO upc_cache (upc, json, fetched_at) VALUES (?, ?, ?)", "012", tc.payload, tc.fetchedAt)

			// Execute
			got, ok, err := NewCache(db, c).Get("012", tc.ttlDays)

			// Test
			assert.NilError(t, err, "getting")
			assert.Equal(t, ok, tc.found, "found mismatch")
			if tc.found {
				assert.Equal(t, got.Name, "Cached Item", "Name mismatch")
			}
		})
	}

	t.Run("absent", func(t *testing.T) {
		db := database.InitTestMemoryDB(t)

		_, ok, err := NewCache(db, clock.NewMock()).Get("012", 30)
		assert.NilError(t, err, "getting")
		assert.Equal(t, ok, false, "found mismatch")
	})
}

func TestCachePut(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()
	c.SetNow(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(db, c)

	assert.NilError(t, cache.Put("012", &products.Product{UPC: "012", Name: "First"}), "putting first")

	c.Advance(time.Hour)
	assert.NilError(t, cache.Put("012", &products.Product{UPC: "012", Name: "Second"}), "putting second")

	assert.Equal(t, database.MustCount(t, "counting entries", db, "upc_cache", "upc = ?", "012"), 1, "entry count mismatch")

	var fetchedAt string
	database.MustScan(t, "scanning entry", db.QueryRow("SELECT fetched_at FROM upc_cache WHERE upc = ?", "012"), &fetchedAt)
	assert.Equal(t, fetchedAt, "2024-03-01T13:00:00.000Z", "fetched_at mismatch")

	got, ok, err := cache.Get("012", 30)
	assert.NilError(t, err, "getting")
	assert.Equal(t, ok, true, "found mismatch")
	assert.Equal(t, got.Name, "Second", "Name mismatch")
}
