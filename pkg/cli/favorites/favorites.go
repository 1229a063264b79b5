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

// Package favorites is the repository of a user's favorite meals
package favorites

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/consts"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

// ErrMissingID is returned when a meal detail carries no identifier
var ErrMissingID = errors.New("no meal id")

// Detail is a meal detail as returned by a recipe source
type Detail map[string]interface{}

// Key identifies a favorite within the favorites of a user
type Key struct {
	MealID string
	Source string
}

// Favorite is a favorite meal with its detail decoded
type Favorite struct {
	Key
	UserID    string
	Title     string
	Thumb     string
	Detail    Detail
	CreatedAt string
	UpdatedAt string
	Dirty     bool
	Lifecycle database.Lifecycle
}

func fromRow(r database.MealFavorite) Favorite {
	detail := Detail{}
	if strings.TrimSpace(r.JSON) != "" {
		if err := json.Unmarshal([]byte(r.JSON), &detail); err != nil {
			log.Debug("malformed detail of %s/%s: %s\n", r.Source, r.MealID, err.Error())
			detail = Detail{}
		}
	}

	return Favorite{
		Key:       Key{MealID: r.MealID, Source: r.Source},
		UserID:    r.UserID,
		Title:     r.Title,
		Thumb:     r.Thumb,
		Detail:    detail,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Dirty:     r.Dirty,
		Lifecycle: database.LifecycleOf(r.Deleted),
	}
}

func query(db *database.DB, where string, args ...interface{}) ([]Favorite, error) {
	rows, err := database.QueryMealFavorites(db,
		fmt.Sprintf("SELECT %s FROM meal_favorites WHERE %s", database.FavoriteColumns, where), args...)
	if err != nil {
		return nil, err
	}

	ret := make([]Favorite, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, fromRow(r))
	}

	return ret, nil
}

func sourceOrDefault(source string) string {
	if source == "" {
		return consts.DefaultFavoriteSource
	}

	return source
}

// ListActive returns the favorites of the user that are not pending deletion,
// newest first
func ListActive(db *database.DB, userID string) ([]Favorite, error) {
	if userID == "" {
		return []Favorite{}, nil
	}

	ret, err := query(db, "user_id = ? AND deleted = 0 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing favorites")
	}

	return ret, nil
}

// Get returns the stored favorite, including one pending deletion
func Get(db *database.DB, userID, mealID, source string) (Favorite, bool, error) {
	if userID == "" {
		return Favorite{}, false, nil
	}

	ret, err := query(db, "user_id = ? AND meal_id = ? AND source = ?", userID, mealID, sourceOrDefault(source))
	if err != nil {
		return Favorite{}, false, errors.Wrap(err, "getting favorite")
	}
	if len(ret) == 0 {
		return Favorite{}, false, nil
	}

	return ret[0], true, nil
}

// IsFavorite reports whether the meal is an active favorite of the user
func IsFavorite(db *database.DB, userID, mealID, source string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	var count int
	err := db.QueryRow(`SELECT count(*) FROM meal_favorites
		WHERE user_id = ? AND meal_id = ? AND source = ? AND deleted = 0`,
		userID, mealID, sourceOrDefault(source)).Scan(&count)
	if err != nil {
		return false, errors.Wrap(err, "checking favorite")
	}

	return count > 0, nil
}

// text renders a detail value as a string. Numbers are formatted without a
// trailing fraction, so that 52772 and "52772" yield the same id.
func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	}

	return ""
}

func firstText(d Detail, keys ...string) string {
	for _, k := range keys {
		if s := text(d[k]); s != "" {
			return s
		}
	}

	return ""
}

// MealID extracts the meal identifier of a detail
func (d Detail) MealID() string {
	return firstText(d, "idMeal", "meal_id", "id")
}

// Title extracts the meal name of a detail
func (d Detail) Title() string {
	return firstText(d, "strMeal", "title")
}

// Thumb extracts the thumbnail url of a detail
func (d Detail) Thumb() string {
	return firstText(d, "strMealThumb", "thumb")
}

// SetFavorite favorites or unfavorites a meal. Favoriting upserts the row with
// the latest detail and revives it if it was pending deletion. Unfavoriting
// marks the row pending deletion. An empty source means the default source.
func SetFavorite(db *database.DB, c clock.Clock, userID string, detail Detail, flag bool, source string) error {
	if err := database.RequireUser(userID); err != nil {
		return err
	}

	mealID := detail.MealID()
	if mealID == "" {
		return ErrMissingID
	}
	source = sourceOrDefault(source)
	now := clock.NowISO(c)

	if !flag {
		_, err := db.Exec(`UPDATE meal_favorites SET deleted = 1, dirty = 1, updated_at = ?
			WHERE user_id = ? AND meal_id = ? AND source = ?`, now, userID, mealID, source)
		if err != nil {
			return errors.Wrap(err, "unfavoriting")
		}

		return nil
	}

	b, err := json.Marshal(detail)
	if err != nil {
		return errors.Wrap(err, "marshalling meal detail")
	}

	_, err = db.Exec(`INSERT INTO meal_favorites
		(user_id, meal_id, source, title, thumb, json, created_at, updated_at, dirty, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 0)
		ON CONFLICT(user_id, meal_id, source) DO UPDATE SET
			title = excluded.title,
			thumb = excluded.thumb,
			json = excluded.json,
			updated_at = excluded.updated_at,
			dirty = 1,
			deleted = 0`,
		userID, mealID, source, detail.Title(), detail.Thumb(), string(b), now, now)
	if err != nil {
		return errors.Wrap(err, "favoriting")
	}

	return nil
}

// GetDirty returns the favorites of the user with unpushed changes
func GetDirty(db *database.DB, userID string) ([]Favorite, error) {
	if userID == "" {
		return []Favorite{}, nil
	}

	ret, err := query(db, "user_id = ? AND dirty = 1", userID)
	if err != nil {
		return nil, errors.Wrap(err, "getting dirty favorites")
	}

	return ret, nil
}

// Pushed identifies the version of a favorite that was sent to the remote
type Pushed struct {
	Key
	UpdatedAt string
}

// PushedVersion returns the version of the favorite being pushed
func PushedVersion(f Favorite) Pushed {
	return Pushed{Key: f.Key, UpdatedAt: f.UpdatedAt}
}

// MarkPushed clears the dirty flag of the pushed favorites, then purges those
// that were pending deletion. A favorite changed since it was read for the
// push stays dirty.
func MarkPushed(db *database.DB, userID string, pushed []Pushed) error {
	if err := database.RequireUser(userID); err != nil {
		return err
	}

	return database.WithTx(db, func(tx *database.DB) error {
		for _, p := range pushed {
			source := sourceOrDefault(p.Source)

			res, err := tx.Exec(`UPDATE meal_favorites SET dirty = 0
				WHERE user_id = ? AND meal_id = ? AND source = ? AND updated_at = ? AND dirty = 1`,
				userID, p.MealID, source, p.UpdatedAt)
			if err != nil {
				return errors.Wrapf(err, "clearing dirty flag of %s/%s", source, p.MealID)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return errors.Wrap(err, "counting cleared favorites")
			}
			if n == 0 {
				log.Debug("%s/%s changed during push, keeping it dirty\n", source, p.MealID)
				continue
			}

			if _, err := tx.Exec(`DELETE FROM meal_favorites
				WHERE user_id = ? AND meal_id = ? AND source = ? AND updated_at = ? AND deleted = 1`,
				userID, p.MealID, source, p.UpdatedAt); err != nil {
				return errors.Wrapf(err, "purging %s/%s", source, p.MealID)
			}
		}

		return nil
	})
}
