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

package logout

import (
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/foodlens/foodlens/pkg/cli/testutils"
)

func TestDo(t *testing.T) {
	ctx := context.InitTestCtx(t)
	assert.Equal(t, Do(ctx), infra.ErrNotLoggedIn, "signed out mismatch")

	testutils.Login(t, &ctx)

	item := database.PantryItem{ID: "user-1|0123", Name: "Milk", Qty: 1, PerServing: "{}", UserID: ctx.UserID, Dirty: true,
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z"}
	assert.NilError(t, item.Insert(ctx.DB), "inserting item")

	n, err := unsynced(ctx)
	assert.NilError(t, err, "counting unsynced")
	assert.Equal(t, n, 1, "unsynced count mismatch")

	assert.NilError(t, Do(ctx), "logging out")

	s, err := session.Load(ctx.DB)
	assert.NilError(t, err, "loading session")
	assert.Equal(t, s.LoggedIn(), false, "session should be cleared")
	assert.Equal(t, database.MustCount(t, "counting items", ctx.DB, "pantry_items", "1 = 1"), 1, "local rows should be kept")
}
