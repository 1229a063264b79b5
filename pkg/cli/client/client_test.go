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

package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/testutils"
	"github.com/pkg/errors"
)

func TestRPCErrorMessage(t *testing.T) {
	testCases := []struct {
		procedure string
		message   string
		expected  string
	}{
		{procedure: client.ProcPantryPush, message: "", expected: "push failed"},
		{procedure: client.ProcPantryPull, message: "", expected: "pull failed"},
		{procedure: client.ProcFavsPush, message: "", expected: "favs push failed"},
		{procedure: client.ProcFavsPull, message: "", expected: "favs pull failed"},
		{procedure: client.ProcLogin, message: "", expected: "login failed"},
		{procedure: client.ProcMe, message: "", expected: "me failed"},
		{procedure: "auth_register_full", message: "", expected: "auth_register_full failed"},
		{procedure: client.ProcPantryPush, message: "quota exceeded", expected: "quota exceeded"},
	}

	for _, tc := range testCases {
		t.Run(tc.procedure, func(t *testing.T) {
			err := &client.RPCError{Procedure: tc.procedure, StatusCode: 500, Message: tc.message}
			assert.Equal(t, err.Error(), tc.expected, "message mismatch")
		})
	}
}

func TestPantryPushPull(t *testing.T) {
	ctx := context.Background()
	srv := testutils.NewRemoteServer(t)
	c := srv.NewClient()

	upc := "0123"
	items := []client.PantryRow{
		{ID: "user-1|0123", UPC: &upc, Name: "Milk", Qty: 2, PerServing: json.RawMessage(`{"kcal":120}`),
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "user-1|manual_1", Name: "Bread", Qty: 1, Deleted: true},
	}

	_, err := c.PantryPush(ctx, srv.Token, items)
	assert.NilError(t, err, "pushing")

	pushes := srv.PantryPushes()
	assert.Equal(t, len(pushes), 1, "push count mismatch")
	assert.Equal(t, len(pushes[0]), 2, "item count mismatch")
	assert.Equal(t, pushes[0][0].Name, "Milk", "name mismatch")
	assert.Equal(t, string(pushes[0][0].PerServing), `{"kcal":120}`, "per_serving mismatch")
	assert.Equal(t, bool(pushes[0][1].Deleted), true, "deleted mismatch")

	srv.PantryRows = []client.PantryRow{{ID: "user-1|0456", Name: "Eggs", UpdatedAt: "2024-02-01T00:00:00Z"}}
	since := "2024-01-01T00:00:00Z"

	rows, err := c.PantryPull(ctx, srv.Token, &since)
	assert.NilError(t, err, "pulling")
	assert.Equal(t, len(rows), 1, "row count mismatch")
	assert.Equal(t, rows[0].Name, "Eggs", "name mismatch")

	rows, err = c.PantryPull(ctx, srv.Token, nil)
	assert.NilError(t, err, "pulling without cursor")
	assert.Equal(t, len(rows), 1, "row count mismatch")

	sinces := srv.Since(client.ProcPantryPull)
	assert.Equal(t, len(sinces), 2, "pull count mismatch")
	assert.Equal(t, *sinces[0], since, "since mismatch")
	assert.Equal(t, sinces[1] == nil, true, "first pull should send a null cursor")
}

func TestFavsPushPull(t *testing.T) {
	ctx := context.Background()
	srv := testutils.NewRemoteServer(t)
	c := srv.NewClient()

	_, err := c.FavsPush(ctx, srv.Token, []client.FavoriteRow{
		{MealID: "52772", Source: "themealdb", Title: "Teriyaki Chicken", JSON: json.RawMessage(`{"idMeal":"52772"}`)},
	})
	assert.NilError(t, err, "pushing")
	assert.Equal(t, string(srv.FavsPushes()[0][0].MealID), "52772", "meal id mismatch")

	srv.FavoriteRows = []client.FavoriteRow{{MealID: "1", Source: "themealdb", Title: "Soup"}}
	rows, err := c.FavsPull(ctx, srv.Token, nil)
	assert.NilError(t, err, "pulling")
	assert.Equal(t, len(rows), 1, "row count mismatch")
	assert.Equal(t, rows[0].Title, "Soup", "title mismatch")
}

func TestProcedureFailure(t *testing.T) {
	ctx := context.Background()
	srv := testutils.NewRemoteServer(t)
	c := srv.NewClient()

	srv.Fail(client.ProcPantryPush, testutils.Failure{StatusCode: 500})
	srv.Fail(client.ProcFavsPull, testutils.Failure{StatusCode: 400, Message: "bad cursor"})

	_, err := c.PantryPush(ctx, srv.Token, []client.PantryRow{{ID: "a", Name: "x"}})
	var rpcErr *client.RPCError
	assert.Equal(t, errors.As(err, &rpcErr), true, "error should be an RPCError")
	assert.Equal(t, rpcErr.StatusCode, 500, "status mismatch")
	assert.Equal(t, err.Error(), "push failed", "message mismatch")

	_, err = c.FavsPull(ctx, srv.Token, nil)
	assert.Equal(t, err.Error(), "bad cursor", "message mismatch")

	_, err = c.PantryPull(ctx, "wrong-token", nil)
	assert.Equal(t, err.Error(), "invalid token", "message mismatch")
}

func TestPullNonArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer ts.Close()

	c := client.New(ts.URL, "", "test", nil)

	rows, err := c.PantryPull(context.Background(), "t", nil)
	assert.NilError(t, err, "pulling")
	assert.Equal(t, len(rows), 0, "row count mismatch")

	favs, err := c.FavsPull(context.Background(), "t", nil)
	assert.NilError(t, err, "pulling favorites")
	assert.Equal(t, len(favs), 0, "row count mismatch")
}

func TestHeaders(t *testing.T) {
	var got http.Header
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := client.New(ts.URL+"/", "anon-key", "0.1.0", nil)
	_, err := c.PantryPull(context.Background(), "t", nil)
	assert.NilError(t, err, "pulling")

	assert.Equal(t, path, "/rest/v1/rpc/pantry_pull", "path mismatch")
	assert.Equal(t, got.Get("apikey"), "anon-key", "apikey mismatch")
	assert.Equal(t, got.Get("Authorization"), "Bearer anon-key", "Authorization mismatch")
	assert.Equal(t, got.Get("X-Client-Info"), "foodlens-cli/0.1.0", "X-Client-Info mismatch")
	assert.NotEqual(t, got.Get("X-Request-Id"), "", "X-Request-Id should be set")
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	srv := testutils.NewRemoteServer(t)
	c := srv.NewClient()

	token, err := c.Login(ctx, srv.Email, srv.Password)
	assert.NilError(t, err, "logging in")
	assert.Equal(t, token, srv.Token, "token mismatch")

	_, err = c.Login(ctx, srv.Email, "wrong")
	assert.ErrorIs(t, err, client.ErrInvalidLogin, "error mismatch")
}

func TestMe(t *testing.T) {
	testCases := []struct {
		body     string
		expected *client.User
	}{
		{
			body:     `[{"id": "u1", "email": "a@example.com", "username": "alice", "phone": null}]`,
			expected: &client.User{ID: "u1", Email: "a@example.com", Username: "alice"},
		},
		{
			body:     `{"user_id": 42, "email": "b@example.com"}`,
			expected: &client.User{ID: "42", Email: "b@example.com"},
		},
		{
			body:     `{"uuid": "abc"}`,
			expected: &client.User{ID: "abc"},
		},
		{
			body:     `[]`,
			expected: nil,
		},
		{
			body:     `null`,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			got, err := client.New(ts.URL, "", "test", nil).Me(context.Background(), "t")
			assert.NilError(t, err, "getting user")
			assert.DeepEqual(t, got, tc.expected, "user mismatch")
		})
	}
}
