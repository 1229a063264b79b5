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

package favorites

import (
	"encoding/json"

	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/reconcile"
	"github.com/pkg/errors"
)

// Schema maps pulled favorite rows onto the meal_favorites table
var Schema = reconcile.Schema{
	Table:      "meal_favorites",
	KeyColumns: []string{"meal_id", "source"},
	Columns:    []string{"title", "thumb", "json"},
}

// ToRemote converts a favorite into its wire shape
func ToRemote(f Favorite) (client.FavoriteRow, error) {
	detail, err := json.Marshal(f.Detail)
	if err != nil {
		return client.FavoriteRow{}, errors.Wrapf(err, "marshalling detail of %s", f.MealID)
	}

	return client.FavoriteRow{
		MealID:    client.Text(f.MealID),
		Source:    sourceOrDefault(f.Source),
		Title:     f.Title,
		Thumb:     f.Thumb,
		JSON:      detail,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		Deleted:   client.Flag(f.Lifecycle.Deleted()),
	}, nil
}

// FromRemote converts a pulled row into a reconciliation row. A row without
// updated_at is stamped with now.
func FromRemote(r client.FavoriteRow, now string) reconcile.Row {
	updatedAt := r.UpdatedAt
	if updatedAt == "" {
		updatedAt = now
	}

	return reconcile.Row{
		Key:       []interface{}{string(r.MealID), sourceOrDefault(r.Source)},
		Values:    []interface{}{r.Title, r.Thumb, client.ObjectText(r.JSON)},
		CreatedAt: r.CreatedAt,
		UpdatedAt: updatedAt,
		Deleted:   bool(r.Deleted),
	}
}
