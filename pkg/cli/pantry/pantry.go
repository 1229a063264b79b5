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

// Package pantry is the repository of a user's pantry items
package pantry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no active item has the given id
var ErrNotFound = errors.New("pantry item not found")

const defaultUnit = "serving"

// Item is a pantry item with its nutrient map decoded
type Item struct {
	ID         string
	UPC        string
	Name       string
	Brand      string
	Qty        float64
	Unit       string
	PerServing products.Nutrients
	CreatedAt  string
	UpdatedAt  string
	UserID     string
	Dirty      bool
	Lifecycle  database.Lifecycle
}

func decodeNutrients(id, text string) products.Nutrients {
	ret := products.Nutrients{}
	if strings.TrimSpace(text) == "" {
		return ret
	}

	if err := json.Unmarshal([]byte(text), &ret); err != nil {
		log.Debug("malformed per_serving of %s: %s\n", id, err.Error())
		return products.Nutrients{}
	}

	return ret
}

func encodeNutrients(n products.Nutrients) (string, error) {
	if n == nil {
		return "{}", nil
	}

	b, err := json.Marshal(n)
	if err != nil {
		return "", errors.Wrap(err, "marshalling nutrients")
	}

	return string(b), nil
}

func fromRow(r database.PantryItem) Item {
	return Item{
		ID:         r.ID,
		UPC:        r.UPC,
		Name:       r.Name,
		Brand:      r.Brand,
		Qty:        r.Qty,
		Unit:       r.Unit,
		PerServing: decodeNutrients(r.ID, r.PerServing),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		UserID:     r.UserID,
		Dirty:      r.Dirty,
		Lifecycle:  database.LifecycleOf(r.Deleted),
	}
}

func query(db *database.DB, where string, args ...interface{}) ([]Item, error) {
	rows, err := database.QueryPantryItems(db,
		fmt.Sprintf("SELECT %s FROM pantry_items WHERE %s", database.PantryColumns, where), args...)
	if err != nil {
		return nil, err
	}

	ret := make([]Item, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, fromRow(r))
	}

	return ret, nil
}

// ListActive returns the items of the user that are not pending deletion,
// newest first
func ListActive(db *database.DB, userID string) ([]Item, error) {
	if userID == "" {
		return []Item{}, nil
	}

	ret, err := query(db, "user_id = ? AND deleted = 0 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing pantry items")
	}

	return ret, nil
}

// Get returns the item with the id, whatever its lifecycle. ok is false if
// the user has no such item.
func Get(db *database.DB, userID, id string) (Item, bool, error) {
	row, err := database.ScanPantryItem(db.QueryRow(
		fmt.Sprintf("SELECT %s FROM pantry_items WHERE user_id = ? AND id = ?", database.PantryColumns), userID, id))
	if err == sql.ErrNoRows {
		return Item{}, false, nil
	} else if err != nil {
		return Item{}, false, errors.Wrapf(err, "getting pantry item %s", id)
	}

	return fromRow(row), true, nil
}

// ClaimOrphans assigns the items without an owner to the user. Such items
// exist when they were added before anyone signed in.
func ClaimOrphans(db *database.DB, userID string) (int64, error) {
	if err := database.RequireUser(userID); err != nil {
		return 0, err
	}

	res, err := db.Exec("UPDATE pantry_items SET user_id = ? WHERE user_id IS NULL OR user_id = ''", userID)
	if err != nil {
		return 0, errors.Wrap(err, "claiming unowned items")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting claimed items")
	}

	return n, nil
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}

	return nil
}

// UpdateQuantity sets the quantity of an active item and marks it dirty. An
// item pending deletion is not revived.
func UpdateQuantity(db *database.DB, c clock.Clock, userID, id string, qty float64) error {
	if err := database.RequireUser(userID); err != nil {
		return err
	}

	res, err := db.Exec(`UPDATE pantry_items SET qty = ?, updated_at = ?, dirty = 1
		WHERE user_id = ? AND id = ? AND deleted = 0`, qty, clock.NowISO(c), userID, id)
	if err != nil {
		return errors.Wrap(err, "updating quantity")
	}

	return affected(res, id)
}

// SoftDelete marks an item pending deletion. The row is kept until the
// deletion has been pushed.
func SoftDelete(db *database.DB, c clock.Clock, userID, id string) error {
	if err := database.RequireUser(userID); err != nil {
		return err
	}

	res, err := db.Exec(`UPDATE pantry_items SET deleted = 1, dirty = 1, updated_at = ?
		WHERE user_id = ? AND id = ? AND deleted = 0`, clock.NowISO(c), userID, id)
	if err != nil {
		return errors.Wrap(err, "deleting item")
	}

	return affected(res, id)
}

// MergeResult is the outcome of AddOrMerge
type MergeResult struct {
	ID     string
	Merged bool
	Qty    float64
}

// ItemID returns the id of an item of the user. Products without a code get
// a time based id.
func ItemID(c clock.Clock, userID, upc string) string {
	base := upc
	if base == "" {
		base = fmt.Sprintf("manual_%d", c.Now().UnixMilli())
	}

	return fmt.Sprintf("%s|%s", userID, base)
}

// AddOrMerge adds addQty of the product to the pantry. An active item with
// the same id or the same code gets its quantity increased. Otherwise a new
// item is created, replacing a pending deletion of the same id if there is
// one. An addQty of zero or less adds one.
func AddOrMerge(db *database.DB, c clock.Clock, userID string, p products.Product, addQty float64) (MergeResult, error) {
	if err := database.RequireUser(userID); err != nil {
		return MergeResult{}, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return MergeResult{}, errors.New("product has no name")
	}
	if addQty <= 0 {
		addQty = 1
	}

	id := ItemID(c, userID, p.UPC)
	perServing, err := encodeNutrients(p.Nutrients)
	if err != nil {
		return MergeResult{}, err
	}
	unit := p.ServingUnit
	if unit == "" {
		unit = defaultUnit
	}

	var ret MergeResult
	err = database.WithTx(db, func(tx *database.DB) error {
		existing, err := query(tx, `user_id = ? AND deleted = 0 AND (id = ? OR (upc IS NOT NULL AND upc = ?))
			ORDER BY id = ? DESC LIMIT 1`, userID, id, p.UPC, id)
		if err != nil {
			return errors.Wrap(err, "finding existing item")
		}

		now := clock.NowISO(c)

		if len(existing) > 0 {
			item := existing[0]
			qty := item.Qty + addQty

			if _, err := tx.Exec(`UPDATE pantry_items SET qty = ?, updated_at = ?, dirty = 1
				WHERE user_id = ? AND id = ?`, qty, now, userID, item.ID); err != nil {
				return errors.Wrap(err, "merging quantity")
			}

			ret = MergeResult{ID: item.ID, Merged: true, Qty: qty}
			return nil
		}

		// a pending deletion of the same id is replaced by the re-added item
		if _, err := tx.Exec(`DELETE FROM pantry_items WHERE user_id = ? AND id = ? AND deleted = 1`, userID, id); err != nil {
			return errors.Wrap(err, "replacing deleted item")
		}

		row := database.PantryItem{
			ID:         id,
			UPC:        p.UPC,
			Name:       p.Name,
			Brand:      p.Brand,
			Qty:        addQty,
			Unit:       unit,
			PerServing: perServing,
			CreatedAt:  now,
			UpdatedAt:  now,
			UserID:     userID,
			Dirty:      true,
		}
		if err := row.Insert(tx); err != nil {
			return err
		}

		ret = MergeResult{ID: id, Merged: false, Qty: addQty}
		return nil
	})
	if err != nil {
		return MergeResult{}, errors.Wrap(err, "adding item")
	}

	return ret, nil
}

// GetDirty returns the items of the user with unpushed changes, including
// pending deletions
func GetDirty(db *database.DB, userID string) ([]Item, error) {
	if userID == "" {
		return []Item{}, nil
	}

	ret, err := query(db, "user_id = ? AND dirty = 1", userID)
	if err != nil {
		return nil, errors.Wrap(err, "getting dirty items")
	}

	return ret, nil
}

// Pushed identifies the version of an item that was sent to the remote
type Pushed struct {
	ID        string
	UpdatedAt string
}

// PushedVersion returns the version of the item being pushed
func PushedVersion(i Item) Pushed {
	return Pushed{ID: i.ID, UpdatedAt: i.UpdatedAt}
}

// MarkPushed clears the dirty flag of the pushed items, then purges those
// that were pending deletion. An item edited since it was read for the push
// has a different updated_at and stays dirty.
func MarkPushed(db *database.DB, userID string, pushed []Pushed) error {
	if err := database.RequireUser(userID); err != nil {
		return err
	}
	if len(pushed) == 0 {
		return nil
	}

	return database.WithTx(db, func(tx *database.DB) error {
		for _, p := range pushed {
			res, err := tx.Exec(`UPDATE pantry_items SET dirty = 0
				WHERE user_id = ? AND id = ? AND updated_at = ? AND dirty = 1`, userID, p.ID, p.UpdatedAt)
			if err != nil {
				return errors.Wrapf(err, "clearing dirty flag of %s", p.ID)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return errors.Wrap(err, "counting cleared items")
			}
			if n == 0 {
				log.Debug("%s changed during push, keeping it dirty\n", p.ID)
				continue
			}

			if _, err := tx.Exec(`DELETE FROM pantry_items
				WHERE user_id = ? AND id = ? AND updated_at = ? AND deleted = 1`, userID, p.ID, p.UpdatedAt); err != nil {
				return errors.Wrapf(err, "purging %s", p.ID)
			}
		}

		return nil
	})
}
