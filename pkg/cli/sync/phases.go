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

package sync

import (
	"context"

	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/cursor"
	"github.com/foodlens/foodlens/pkg/cli/favorites"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/reconcile"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

func (o *Orchestrator) pushPantry(ctx context.Context, token string) (int, error) {
	dirty, err := pantry.GetDirty(o.DB, o.UserID)
	if err != nil {
		return 0, err
	}
	if len(dirty) == 0 {
		return 0, nil
	}

	items := make([]client.PantryRow, 0, len(dirty))
	pushed := make([]pantry.Pushed, 0, len(dirty))
	for _, item := range dirty {
		row, err := pantry.ToRemote(item)
		if err != nil {
			return 0, err
		}

		items = append(items, row)
		pushed = append(pushed, pantry.PushedVersion(item))
	}

	if _, err := o.Remote.PantryPush(ctx, token, items); err != nil {
		return 0, err
	}

	if err := pantry.MarkPushed(o.DB, o.UserID, pushed); err != nil {
		return 0, errors.Wrap(err, "marking pushed items")
	}

	log.Debug("pushed %d pantry items\n", len(items))

	return len(items), nil
}

func (o *Orchestrator) pullPantry(ctx context.Context, token string) (int, error) {
	key := cursor.PantryLastPull(o.UserID)

	since, err := o.since(key)
	if err != nil {
		return 0, err
	}

	rows, err := o.Remote.PantryPull(ctx, token, since)
	if err != nil {
		return 0, err
	}

	if len(rows) > 0 {
		batch := make([]reconcile.Row, 0, len(rows))
		updatedAts := make([]string, 0, len(rows))
		for _, r := range rows {
			batch = append(batch, pantry.FromRemote(r))
			updatedAts = append(updatedAts, r.UpdatedAt)
		}

		stats, err := reconcile.Apply(o.DB, o.UserID, batch, pantry.Schema)
		if err != nil {
			return 0, errors.Wrap(err, "applying pantry rows")
		}
		log.Debug("pantry pull: %+v\n", stats)

		if err := o.advance(key, updatedAts); err != nil {
			return 0, err
		}
	}

	// an empty pull still proves the pantry is fresh
	if err := cursor.Set(o.DB, cursor.PantryLastSyncAt(o.UserID), clock.NowISO(o.Clock)); err != nil {
		return 0, errors.Wrap(err, "recording sync time")
	}

	return len(rows), nil
}

func (o *Orchestrator) pushFavs(ctx context.Context, token string) (int, error) {
	dirty, err := favorites.GetDirty(o.DB, o.UserID)
	if err != nil {
		return 0, err
	}
	if len(dirty) == 0 {
		return 0, nil
	}

	items := make([]client.FavoriteRow, 0, len(dirty))
	pushed := make([]favorites.Pushed, 0, len(dirty))
	for _, f := range dirty {
		row, err := favorites.ToRemote(f)
		if err != nil {
			return 0, err
		}

		items = append(items, row)
		pushed = append(pushed, favorites.PushedVersion(f))
	}

	if _, err := o.Remote.FavsPush(ctx, token, items); err != nil {
		return 0, err
	}

	if err := favorites.MarkPushed(o.DB, o.UserID, pushed); err != nil {
		return 0, errors.Wrap(err, "marking pushed favorites")
	}

	log.Debug("pushed %d favorites\n", len(items))

	return len(items), nil
}

func (o *Orchestrator) pullFavs(ctx context.Context, token string) (int, error) {
	key := cursor.FavsLastPull(o.UserID)

	since, err := o.since(key)
	if err != nil {
		return 0, err
	}

	rows, err := o.Remote.FavsPull(ctx, token, since)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := clock.NowISO(o.Clock)
	batch := make([]reconcile.Row, 0, len(rows))
	updatedAts := make([]string, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, favorites.FromRemote(r, now))
		// the cursor follows server timestamps only; a row stored with now does not move it
		updatedAts = append(updatedAts, r.UpdatedAt)
	}

	stats, err := reconcile.Apply(o.DB, o.UserID, batch, favorites.Schema)
	if err != nil {
		return 0, errors.Wrap(err, "applying favorite rows")
	}
	log.Debug("favorites pull: %+v\n", stats)

	if err := o.advance(key, updatedAts); err != nil {
		return 0, err
	}

	return len(rows), nil
}
