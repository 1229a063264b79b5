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

// Package cursor persists per-user sync cursors in the sync_state key/value table
package cursor

import (
	"database/sql"
	"fmt"

	"github.com/foodlens/foodlens/pkg/cli/consts"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

func userKey(prefix, userID string) string {
	return fmt.Sprintf("%s:%s", prefix, userID)
}

// PantryLastPull returns the key of the pantry pull cursor of the user
func PantryLastPull(userID string) string {
	return userKey(consts.KVPantryLastPull, userID)
}

// PantryLastSyncAt returns the key of the time at which the user's pantry last synced
func PantryLastSyncAt(userID string) string {
	return userKey(consts.KVPantryLastSyncAt, userID)
}

// FavsLastPull returns the key of the favorites pull cursor of the user
func FavsLastPull(userID string) string {
	return userKey(consts.KVFavsLastPull, userID)
}

// Get returns the value stored under the key. ok is false if there is none.
func Get(db *database.DB, key string) (string, bool, error) {
	var ret string

	err := db.QueryRow("SELECT v FROM sync_state WHERE k = ?", key).Scan(&ret)
	if err == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "getting %s", key)
	}

	return ret, true, nil
}

// Set upserts the value under the key
func Set(db *database.DB, key, value string) error {
	_, err := db.Exec(`INSERT INTO sync_state (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	if err != nil {
		return errors.Wrapf(err, "setting %s", key)
	}

	return nil
}

// Delete removes the key
func Delete(db *database.DB, key string) error {
	if _, err := db.Exec("DELETE FROM sync_state WHERE k = ?", key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}

	return nil
}

// Advance stores the candidate timestamp under the key only if it is later
// than the stored one, so that a cursor never moves backwards. It reports
// whether the value was written.
func Advance(db *database.DB, key, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}

	current, ok, err := Get(db, key)
	if err != nil {
		return false, errors.Wrap(err, "getting the current cursor")
	}
	if ok && clock.CompareISO(candidate, current) <= 0 {
		return false, nil
	}

	if err := Set(db, key, candidate); err != nil {
		return false, err
	}

	return true, nil
}
