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
	"net/http"
	"testing"
	"time"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/cursor"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/favorites"
	"github.com/foodlens/foodlens/pkg/cli/network"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/testutils"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

type staticToken string

func (s staticToken) ActiveToken(ctx context.Context) (string, error) {
	return string(s), nil
}

type failingToken struct{}

func (failingToken) ActiveToken(ctx context.Context) (string, error) {
	return "", errors.New("keychain locked")
}

var online = network.Static{Connected: true}

func setup(t *testing.T) (*Orchestrator, *testutils.RemoteServer) {
	server := testutils.NewRemoteServer(t)

	c := clock.NewMock()
	c.SetNow(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))

	o := &Orchestrator{
		DB:      database.InitTestMemoryDB(t),
		Clock:   c,
		Remote:  server.NewClient(),
		Tokens:  staticToken(server.Token),
		Network: online,
		UserID:  server.UserID,
	}

	return o, server
}

func TestSyncNowOffline(t *testing.T) {
	unreachable := false

	testCases := []struct {
		name  string
		state network.State
	}{
		{
			name:  "disconnected",
			state: network.State{Connected: false},
		},
		{
			name:  "internet unreachable",
			state: network.State{Connected: true, InternetReachable: &unreachable},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o, server := setup(t)
			o.Network = network.Static(tc.state)
			o.Tokens = failingToken{}

			res, err := o.SyncNow(context.Background())
			assert.NilError(t, err, "syncing")
			assert.Equal(t, res.Skipped, SkippedOffline, "skipped mismatch")
			assert.Equal(t, server.TotalCalls(), 0, "remote call count mismatch")
		})
	}
}

func TestSyncNowNoToken(t *testing.T) {
	o, server := setup(t)
	o.Tokens = staticToken("")

	res, err := o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing")
	assert.Equal(t, res.Skipped, SkippedNoToken, "skipped mismatch")
	assert.Equal(t, server.TotalCalls(), 0, "remote call count mismatch")
}

func TestSyncNowErrors(t *testing.T) {
	t.Run("token", func(t *testing.T) {
		o, server := setup(t)
		o.Tokens = failingToken{}

		_, err := o.SyncNow(context.Background())
		assert.NotEqual(t, err, nil, "error mismatch")
		assert.Equal(t, server.TotalCalls(), 0, "remote call count mismatch")
	})

	t.Run("no user", func(t *testing.T) {
		o, _ := setup(t)
		o.UserID = ""

		_, err := o.SyncNow(context.Background())
		assert.ErrorIs(t, err, database.ErrNoUser, "error mismatch")
	})
}

func TestSyncNowPantry(t *testing.T) {
	o, server := setup(t)

	for _, item := range []database.PantryItem{
		{ID: "user-1|0123", UPC: "0123", Name: "Milk", Qty: 1, Unit: "ml", PerServing: `{"kcal":120}`,
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-02-10T00:00:00.000Z", UserID: "user-1", Dirty: true},
		{ID: "user-1|0456", UPC: "0456", Name: "Bread", Qty: 1, PerServing: "{}",
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-02-10T00:00:00.000Z", UserID: "user-1", Dirty: true, Deleted: true},
		{ID: "user-1|0888", Name: "Clean", Qty: 1, PerServing: "{}",
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z", UserID: "user-1"},
	} {
		assert.NilError(t, item.Insert(o.DB), "inserting item")
	}

	server.PantryRows = []client.PantryRow{
		{ID: "user-1|0789", Name: "Eggs", Qty: 12, PerServing: []byte(`{"protein":6}`),
			CreatedAt: "2024-01-10T00:00:00Z", UpdatedAt: "2024-01-15T00:00:00Z"},
		{ID: "user-1|0999", Name: "Rice", Qty: 2,
			CreatedAt: "2024-01-10T00:00:00Z", UpdatedAt: "2024-02-01T00:00:00Z"},
	}

	res, err := o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing")
	assert.Equal(t, res.Skipped, "", "skipped mismatch")
	assert.Equal(t, res.Pantry.Push, PushResult{Pushed: 2}, "push result mismatch")
	assert.Equal(t, res.Pantry.Pull, PullResult{Pulled: 2}, "pull result mismatch")
	assert.Equal(t, res.Pantry.Failed(), false, "failed mismatch")

	pushes := server.PantryPushes()
	assert.Equal(t, len(pushes), 1, "push count mismatch")
	assert.Equal(t, len(pushes[0]), 2, "pushed row count mismatch")
	pushedDeletes := 0
	for _, row := range pushes[0] {
		if row.Deleted {
			pushedDeletes++
		}
	}
	assert.Equal(t, pushedDeletes, 1, "pushed delete count mismatch")

	assert.Equal(t, database.MustCount(t, "counting purged", o.DB, "pantry_items", "id = ?", "user-1|0456"), 0, "deleted row should be purged")
	assert.Equal(t, database.MustCount(t, "counting dirty", o.DB, "pantry_items", "dirty = 1"), 0, "dirty row count mismatch")
	assert.Equal(t, database.MustCount(t, "counting rows", o.DB, "pantry_items", "user_id = ?", "user-1"), 4, "row count mismatch")

	since := server.Since(client.ProcPantryPull)
	assert.Equal(t, len(since), 1, "pull count mismatch")
	assert.Equal(t, since[0] == nil, true, "first pull should have no cursor")

	last, ok, err := cursor.Get(o.DB, cursor.PantryLastPull("user-1"))
	assert.NilError(t, err, "getting cursor")
	assert.Equal(t, ok, true, "cursor should be set")
	assert.Equal(t, last, "2024-02-01T00:00:00Z", "cursor mismatch")

	syncedAt, err := LastSyncAt(o.DB, "user-1")
	assert.NilError(t, err, "getting last sync time")
	assert.Equal(t, syncedAt, "2024-03-01T12:00:00.000Z", "last sync time mismatch")

	// the second pull resumes from the cursor and pushes nothing
	server.PantryRows = nil
	res, err = o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing again")
	assert.Equal(t, res.Pantry.Push.Pushed, 0, "second push mismatch")
	assert.Equal(t, len(server.PantryPushes()), 1, "an empty push should not be sent")

	since = server.Since(client.ProcPantryPull)
	assert.Equal(t, len(since), 2, "pull count mismatch")
	assert.Equal(t, *since[1], "2024-02-01T00:00:00Z", "second pull cursor mismatch")

	last, _, err = cursor.Get(o.DB, cursor.PantryLastPull("user-1"))
	assert.NilError(t, err, "getting cursor")
	assert.Equal(t, last, "2024-02-01T00:00:00Z", "an empty pull should keep the cursor")
}

func TestSyncNowPhaseFailure(t *testing.T) {
	o, server := setup(t)

	item := database.PantryItem{ID: "user-1|0123", Name: "Milk", Qty: 1, PerServing: "{}",
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z", UserID: "user-1", Dirty: true}
	assert.NilError(t, item.Insert(o.DB), "inserting item")
	fav := database.MealFavorite{UserID: "user-1", MealID: "52772", Source: "themealdb", Title: "Teriyaki", JSON: "{}",
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z", Dirty: true}
	assert.NilError(t, fav.Insert(o.DB), "inserting favorite")

	server.Fail(client.ProcPantryPush, testutils.Failure{StatusCode: http.StatusInternalServerError, Message: "boom"})
	server.FavoriteRows = []client.FavoriteRow{
		{MealID: "53000", Source: "themealdb", Title: "Stew", UpdatedAt: "2024-02-02T00:00:00Z"},
	}

	res, err := o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing")
	assert.Equal(t, res.Pantry.Push.Error, "boom", "push error mismatch")
	assert.Equal(t, res.Pantry.Pull.Error, "", "pull error mismatch")
	assert.Equal(t, res.Favs.Push, PushResult{Pushed: 1}, "favs push mismatch")
	assert.Equal(t, res.Favs.Pull, PullResult{Pulled: 1}, "favs pull mismatch")
	assert.Equal(t, res.Pantry.Failed(), true, "failed mismatch")

	assert.Equal(t, server.Calls(client.ProcPantryPull), 1, "pantry pull should still run")
	assert.Equal(t, database.MustCount(t, "counting dirty", o.DB, "pantry_items", "dirty = 1"), 1, "failed push should keep the row dirty")
	assert.Equal(t, database.MustCount(t, "counting favorites", o.DB, "meal_favorites", "dirty = 0"), 2, "favorite count mismatch")

	last, _, err := cursor.Get(o.DB, cursor.FavsLastPull("user-1"))
	assert.NilError(t, err, "getting cursor")
	assert.Equal(t, last, "2024-02-02T00:00:00Z", "favorites cursor mismatch")
}

func TestSyncNowFavoritesNoLastSyncAt(t *testing.T) {
	o, server := setup(t)
	server.Fail(client.ProcPantryPull, testutils.Failure{StatusCode: http.StatusBadGateway})
	server.FavoriteRows = []client.FavoriteRow{
		{MealID: "53000", Title: "Stew", UpdatedAt: "2024-02-02T00:00:00Z"},
	}

	res, err := o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing")
	assert.Equal(t, res.Pantry.Pull.Error, "pull failed", "pull error mismatch")
	assert.Equal(t, res.Favs.Pull.Pulled, 1, "favs pull mismatch")

	syncedAt, err := LastSyncAt(o.DB, "user-1")
	assert.NilError(t, err, "getting last sync time")
	assert.Equal(t, syncedAt, "", "favorites should not stamp the last sync time")
}

// editingRemote runs local edits while a push is in flight
type editingRemote struct {
	Remote
	duringPantryPush func()
	duringFavsPush   func()
}

func (r editingRemote) PantryPush(ctx context.Context, token string, items []client.PantryRow) (client.PushResp, error) {
	if r.duringPantryPush != nil {
		r.duringPantryPush()
	}

	return r.Remote.PantryPush(ctx, token, items)
}

func (r editingRemote) FavsPush(ctx context.Context, token string, items []client.FavoriteRow) (client.PushResp, error) {
	if r.duringFavsPush != nil {
		r.duringFavsPush()
	}

	return r.Remote.FavsPush(ctx, token, items)
}

func TestSyncNowKeepsEditsMadeDuringPush(t *testing.T) {
	o, _ := setup(t)
	c := o.Clock.(*clock.Mock)

	for _, item := range []database.PantryItem{
		{ID: "user-1|0123", Name: "Milk", Qty: 1, PerServing: "{}",
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-02-10T00:00:00.000Z", UserID: "user-1", Dirty: true},
		{ID: "user-1|0456", Name: "Bread", Qty: 1, PerServing: "{}",
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-02-10T00:00:00.000Z", UserID: "user-1", Dirty: true},
	} {
		assert.NilError(t, item.Insert(o.DB), "inserting item")
	}
	fav := database.MealFavorite{UserID: "user-1", MealID: "52772", Source: "themealdb", Title: "Teriyaki", JSON: "{}",
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-02-10T00:00:00.000Z", Dirty: true}
	assert.NilError(t, fav.Insert(o.DB), "inserting favorite")

	o.Remote = editingRemote{
		Remote: o.Remote,
		duringPantryPush: func() {
			c.Advance(time.Second)
			assert.NilError(t, pantry.UpdateQuantity(o.DB, o.Clock, "user-1", "user-1|0123", 7), "updating quantity")
		},
		duringFavsPush: func() {
			c.Advance(time.Second)
			assert.NilError(t, favorites.SetFavorite(o.DB, o.Clock, "user-1", favorites.Detail{"idMeal": "52772"}, false, ""), "unfavoriting")
		},
	}

	res, err := o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing")
	assert.Equal(t, res.Pantry.Push, PushResult{Pushed: 2}, "push result mismatch")
	assert.Equal(t, res.Favs.Push, PushResult{Pushed: 1}, "favs push result mismatch")

	milk, ok, err := pantry.Get(o.DB, "user-1", "user-1|0123")
	assert.NilError(t, err, "getting edited item")
	assert.Equal(t, ok, true, "edited item should exist")
	assert.Equal(t, milk.Qty, 7.0, "quantity mismatch")
	assert.Equal(t, milk.Dirty, true, "an edit made during the push should stay dirty")

	bread, _, err := pantry.Get(o.DB, "user-1", "user-1|0456")
	assert.NilError(t, err, "getting pushed item")
	assert.Equal(t, bread.Dirty, false, "an untouched item should be clean")

	assert.Equal(t, database.MustCount(t, "counting favorites", o.DB, "meal_favorites",
		"meal_id = ? AND deleted = 1 AND dirty = 1", "52772"), 1, "a removal made during the push should wait for the next push")
}

func TestSyncNowFavoritesCursorIgnoresMissingTimestamps(t *testing.T) {
	o, server := setup(t)
	assert.NilError(t, cursor.Set(o.DB, cursor.FavsLastPull("user-1"), "2024-01-01T00:00:00.000Z"), "setting cursor")

	server.FavoriteRows = []client.FavoriteRow{
		{MealID: "1", Title: "Stew"},
	}

	res, err := o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing")
	assert.Equal(t, res.Favs.Pull.Pulled, 1, "favs pull mismatch")

	last, _, err := cursor.Get(o.DB, cursor.FavsLastPull("user-1"))
	assert.NilError(t, err, "getting cursor")
	assert.Equal(t, last, "2024-01-01T00:00:00.000Z", "a row without updated_at should not move the cursor")

	var updatedAt string
	database.MustScan(t, "getting favorite", o.DB.QueryRow("SELECT updated_at FROM meal_favorites WHERE meal_id = ?", "1"), &updatedAt)
	assert.Equal(t, updatedAt, "2024-03-01T12:00:00.000Z", "the stored row should be stamped with now")

	server.FavoriteRows = []client.FavoriteRow{
		{MealID: "1", Title: "Stew"},
		{MealID: "2", Title: "Pie", UpdatedAt: "2024-01-20T00:00:00Z"},
	}
	_, err = o.SyncNow(context.Background())
	assert.NilError(t, err, "syncing again")

	last, _, err = cursor.Get(o.DB, cursor.FavsLastPull("user-1"))
	assert.NilError(t, err, "getting cursor")
	assert.Equal(t, last, "2024-01-20T00:00:00Z", "cursor should follow server timestamps")
}

type blockingProber struct {
	calls   chan struct{}
	release chan struct{}
}

func (p blockingProber) Probe(ctx context.Context) (network.State, error) {
	p.calls <- struct{}{}
	<-p.release

	return network.State{Connected: true}, nil
}

func TestSyncNowCoalesces(t *testing.T) {
	o, server := setup(t)
	p := blockingProber{calls: make(chan struct{}, 2), release: make(chan struct{})}
	o.Network = p

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 2)
	run := func(ctx context.Context) {
		res, err := o.SyncNow(ctx)
		done <- outcome{res, err}
	}

	go run(context.Background())
	<-p.calls

	ctx, cancel := context.WithCancel(context.Background())
	go run(ctx)
	go run(context.Background())

	// let the later calls join the one in flight
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(p.release)

	var cancelled, finished int
	for i := 0; i < 3; i++ {
		o := <-done
		if o.err == context.Canceled {
			cancelled++
			continue
		}

		assert.NilError(t, o.err, "syncing")
		finished++
	}

	assert.Equal(t, cancelled, 1, "cancelled call count mismatch")
	assert.Equal(t, finished, 2, "finished call count mismatch")
	assert.Equal(t, len(p.calls), 0, "network should be probed once")
	assert.Equal(t, server.Calls(client.ProcPantryPull), 1, "pantry should be pulled once")
}
