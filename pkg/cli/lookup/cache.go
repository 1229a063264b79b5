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

// Package lookup resolves product codes through a local cache backed by
// external providers
package lookup

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

// Cache stores normalized products by code in the upc_cache table. Entries
// are shared by all users.
type Cache struct {
	DB    *database.DB
	Clock clock.Clock
}

// NewCache returns a cache over the given database
func NewCache(db *database.DB, c clock.Clock) *Cache {
	return &Cache{DB: db, Clock: c}
}

// Get returns the cached product. ok is false if there is no entry, if the
// entry is older than ttlDays, or if it cannot be decoded. A ttlDays of zero
// or less disables expiry.
func (c *Cache) Get(code string, ttlDays int) (*products.Product, bool, error) {
	var payload, fetchedAt string

	err := c.DB.QueryRow("SELECT json, fetched_at FROM upc_cache WHERE upc = ?", code).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "querying the cache")
	}

	if ttlDays > 0 && c.expired(fetchedAt, ttlDays) {
		return nil, false, nil
	}

	var ret products.Product
	if err := json.Unmarshal([]byte(payload), &ret); err != nil {
		log.Debug("malformed cache entry for %s: %s\n", code, err.Error())
		return nil, false, nil
	}

	return &ret, true, nil
}

func (c *Cache) expired(fetchedAt string, ttlDays int) bool {
	t, ok := clock.ParseISO(fetchedAt)
	if !ok {
		return true
	}

	ttl := time.Duration(ttlDays) * 24 * time.Hour
	return c.Clock.Now().Sub(t) > ttl
}

// Put upserts the product under the code, stamped with the current time
func (c *Cache) Put(code string, p *products.Product) error {
	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshalling the product")
	}

	_, err = c.DB.Exec(`INSERT INTO upc_cache (upc, json, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(upc) DO UPDATE SET json = excluded.json, fetched_at = excluded.fetched_at`,
		code, string(b), clock.NowISO(c.Clock))
	if err != nil {
		return errors.Wrap(err, "upserting the cache entry")
	}

	return nil
}
