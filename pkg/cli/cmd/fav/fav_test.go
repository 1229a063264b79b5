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

package fav

import (
	"bytes"
	"strings"
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/favorites"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/testutils"
)

func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		sourceFlag = ""
		titleFlag = ""
		thumbFlag = ""
	})
}

func TestSet(t *testing.T) {
	resetFlags(t)

	ctx := context.InitTestCtx(t)
	testutils.Login(t, &ctx)

	titleFlag = "Teriyaki Chicken Casserole"
	assert.NilError(t, set(ctx, "52772", true), "favoriting")

	ok, err := favorites.IsFavorite(ctx.DB, ctx.UserID, "52772", "")
	assert.NilError(t, err, "checking favorite")
	assert.Equal(t, ok, true, "meal should be a favorite")

	var buf bytes.Buffer
	assert.NilError(t, list(ctx, &buf), "listing")
	assert.Equal(t, strings.Contains(buf.String(), "Teriyaki Chicken Casserole"), true, "output should contain the title")

	assert.NilError(t, set(ctx, "52772", false), "unfavoriting")

	ok, err = favorites.IsFavorite(ctx.DB, ctx.UserID, "52772", "")
	assert.NilError(t, err, "checking favorite")
	assert.Equal(t, ok, false, "meal should not be a favorite")
	assert.Equal(t, database.MustCount(t, "counting pending deletions", ctx.DB, "meal_favorites", "deleted = 1 AND dirty = 1"), 1, "row should be kept until pushed")

	assert.NotEqual(t, set(ctx, "52772", false), nil, "unfavoriting twice should fail")
}

func TestSetKeepsStoredDetail(t *testing.T) {
	resetFlags(t)

	ctx := context.InitTestCtx(t)
	testutils.Login(t, &ctx)

	detail := favorites.Detail{"idMeal": "52772", "strMeal": "Teriyaki Chicken Casserole",
		"strMealThumb": "https://example.com/teriyaki.jpg", "strArea": "Japanese"}
	assert.NilError(t, favorites.SetFavorite(ctx.DB, ctx.Clock, ctx.UserID, detail, true, ""), "favoriting")

	assert.NilError(t, set(ctx, "52772", true), "favoriting again without flags")

	f, ok, err := favorites.Get(ctx.DB, ctx.UserID, "52772", "")
	assert.NilError(t, err, "getting favorite")
	assert.Equal(t, ok, true, "favorite should exist")
	assert.Equal(t, f.Title, "Teriyaki Chicken Casserole", "title mismatch")
	assert.Equal(t, f.Thumb, "https://example.com/teriyaki.jpg", "thumb mismatch")
	assert.Equal(t, f.Detail["strArea"], "Japanese", "detail should be kept")

	titleFlag = "Teriyaki Casserole"
	assert.NilError(t, set(ctx, "52772", true), "renaming")

	f, _, err = favorites.Get(ctx.DB, ctx.UserID, "52772", "")
	assert.NilError(t, err, "getting favorite")
	assert.Equal(t, f.Title, "Teriyaki Casserole", "title should follow the flag")
	assert.Equal(t, f.Thumb, "https://example.com/teriyaki.jpg", "thumb should be kept")
	assert.Equal(t, f.Detail["strArea"], "Japanese", "detail should be kept after renaming")
}

func TestSetSource(t *testing.T) {
	resetFlags(t)

	ctx := context.InitTestCtx(t)
	testutils.Login(t, &ctx)

	sourceFlag = "spoonacular"
	assert.NilError(t, set(ctx, "716429", true), "favoriting")

	ok, err := favorites.IsFavorite(ctx.DB, ctx.UserID, "716429", "spoonacular")
	assert.NilError(t, err, "checking favorite")
	assert.Equal(t, ok, true, "favorite should be in the given source")

	ok, err = favorites.IsFavorite(ctx.DB, ctx.UserID, "716429", "")
	assert.NilError(t, err, "checking favorite")
	assert.Equal(t, ok, false, "favorite should not be in the default source")
}

func TestSetErrors(t *testing.T) {
	resetFlags(t)

	ctx := context.InitTestCtx(t)
	assert.Equal(t, set(ctx, "52772", true), infra.ErrNotLoggedIn, "signed out mismatch")

	testutils.Login(t, &ctx)
	assert.ErrorIs(t, set(ctx, " ", true), favorites.ErrMissingID, "missing id mismatch")
}
