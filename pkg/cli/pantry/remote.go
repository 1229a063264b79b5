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

package pantry

import (
	"encoding/json"

	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/reconcile"
	"github.com/pkg/errors"
)

// Schema maps pulled pantry rows onto the pantry_items table
var Schema = reconcile.Schema{
	Table:      "pantry_items",
	KeyColumns: []string{"id"},
	Columns:    []string{"upc", "name", "brand", "qty", "unit", "per_serving"},
}

// ToRemote converts an item into its wire shape
func ToRemote(i Item) (client.PantryRow, error) {
	perServing, err := json.Marshal(i.PerServing)
	if err != nil {
		return client.PantryRow{}, errors.Wrapf(err, "marshalling nutrients of %s", i.ID)
	}

	return client.PantryRow{
		ID:         i.ID,
		UPC:        client.StringPtr(i.UPC),
		Name:       i.Name,
		Brand:      client.StringPtr(i.Brand),
		Qty:        i.Qty,
		Unit:       client.StringPtr(i.Unit),
		PerServing: perServing,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
		Deleted:    client.Flag(i.Lifecycle.Deleted()),
	}, nil
}

// FromRemote converts a pulled row into a reconciliation row
func FromRemote(r client.PantryRow) reconcile.Row {
	return reconcile.Row{
		Key: []interface{}{r.ID},
		Values: []interface{}{
			database.NullString(client.StringValue(r.UPC)),
			r.Name,
			database.NullString(client.StringValue(r.Brand)),
			r.Qty,
			database.NullString(client.StringValue(r.Unit)),
			client.ObjectText(r.PerServing),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Deleted:   bool(r.Deleted),
	}
}
