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

package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// PantryItem is a row in the pantry_items table. PerServing holds the
// nutrient map serialized as JSON text.
type PantryItem struct {
	ID         string
	UPC        string
	Name       string
	Brand      string
	Qty        float64
	Unit       string
	PerServing string
	CreatedAt  string
	UpdatedAt  string
	UserID     string
	Dirty      bool
	Deleted    bool
}

// MealFavorite is a row in the meal_favorites table. JSON holds the cached
// meal detail serialized as text.
type MealFavorite struct {
	UserID    string
	MealID    string
	Source    string
	Title     string
	Thumb     string
	JSON      string
	CreatedAt string
	UpdatedAt string
	Dirty     bool
	Deleted   bool
}

// PantryColumns is the column list scanned by ScanPantryItem
const PantryColumns = "id, upc, name, brand, qty, unit, per_serving, created_at, updated_at, user_id, dirty, deleted"

// FavoriteColumns is the column list scanned by ScanMealFavorite
const FavoriteColumns = "user_id, meal_id, source, title, thumb, json, created_at, updated_at, dirty, deleted"

type scanner interface {
	Scan(dest ...interface{}) error
}

// ScanPantryItem scans a row selected with PantryColumns
func ScanPantryItem(s scanner) (PantryItem, error) {
	var ret PantryItem
	var upc, brand, unit, perServing, userID sql.NullString
	var qty sql.NullFloat64
	var dirty, deleted sql.NullBool

	if err := s.Scan(&ret.ID, &upc, &ret.Name, &brand, &qty, &unit, &perServing,
		&ret.CreatedAt, &ret.UpdatedAt, &userID, &dirty, &deleted); err != nil {
		return ret, err
	}

	ret.UPC = upc.String
	ret.Brand = brand.String
	ret.Qty = qty.Float64
	ret.Unit = unit.String
	ret.PerServing = perServing.String
	ret.UserID = userID.String
	ret.Dirty = dirty.Bool
	ret.Deleted = deleted.Bool

	return ret, nil
}

// ScanMealFavorite scans a row selected with FavoriteColumns
func ScanMealFavorite(s scanner) (MealFavorite, error) {
	var ret MealFavorite
	var title, thumb, json sql.NullString
	var dirty, deleted sql.NullBool

	if err := s.Scan(&ret.UserID, &ret.MealID, &ret.Source, &title, &thumb, &json,
		&ret.CreatedAt, &ret.UpdatedAt, &dirty, &deleted); err != nil {
		return ret, err
	}

	ret.Title = title.String
	ret.Thumb = thumb.String
	ret.JSON = json.String
	ret.Dirty = dirty.Bool
	ret.Deleted = deleted.Bool

	return ret, nil
}

// QueryPantryItems runs the query and scans every resulting row. The rows are fully
// read before returning so that the caller may write to the table afterwards.
func QueryPantryItems(db *DB, query string, args ...interface{}) ([]PantryItem, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying pantry items")
	}
	defer rows.Close()

	ret := []PantryItem{}
	for rows.Next() {
		item, err := ScanPantryItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a pantry item")
		}

		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating pantry items")
	}

	return ret, nil
}

// QueryMealFavorites runs the query and scans every resulting row
func QueryMealFavorites(db *DB, query string, args ...interface{}) ([]MealFavorite, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying meal favorites")
	}
	defer rows.Close()

	ret := []MealFavorite{}
	for rows.Next() {
		fav, err := ScanMealFavorite(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a meal favorite")
		}

		ret = append(ret, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating meal favorites")
	}

	return ret, nil
}

// Insert inserts a new pantry item
func (i PantryItem) Insert(db *DB) error {
	_, err := db.Exec(`INSERT INTO pantry_items
		(id, upc, name, brand, qty, unit, per_serving, created_at, updated_at, user_id, dirty, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, NullString(i.UPC), i.Name, NullString(i.Brand), i.Qty, NullString(i.Unit), i.PerServing,
		i.CreatedAt, i.UpdatedAt, NullString(i.UserID), i.Dirty, i.Deleted)
	if err != nil {
		return errors.Wrapf(err, "inserting pantry item with id %s", i.ID)
	}

	return nil
}

// Insert inserts a new meal favorite
func (f MealFavorite) Insert(db *DB) error {
	_, err := db.Exec(`INSERT INTO meal_favorites
		(user_id, meal_id, source, title, thumb, json, created_at, updated_at, dirty, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UserID, f.MealID, f.Source, f.Title, f.Thumb, f.JSON, f.CreatedAt, f.UpdatedAt, f.Dirty, f.Deleted)
	if err != nil {
		return errors.Wrapf(err, "inserting meal favorite %s/%s", f.Source, f.MealID)
	}

	return nil
}
