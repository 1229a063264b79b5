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

package login

import (
	stdctx "context"
	"fmt"
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/foodlens/foodlens/pkg/cli/testutils"
)

func TestGetServerDisplayURL(t *testing.T) {
	testCases := []struct {
		apiEndpoint string
		expected    string
	}{
		{
			apiEndpoint: "https://abcdefgh.supabase.co",
			expected:    "https://abcdefgh.supabase.co",
		},
		{
			apiEndpoint: "https://api.mydomain.com/foodlens/",
			expected:    "https://api.mydomain.com",
		},
		{
			apiEndpoint: "http://localhost:54321",
			expected:    "http://localhost:54321",
		},
		{
			apiEndpoint: "some-string",
			expected:    "",
		},
		{
			apiEndpoint: "",
			expected:    "",
		},
		{
			apiEndpoint: "https://",
			expected:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("for input %s", tc.apiEndpoint), func(t *testing.T) {
			got := getServerDisplayURL(context.FoodlensCtx{APIEndpoint: tc.apiEndpoint})
			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func TestDo(t *testing.T) {
	server := testutils.NewRemoteServer(t)

	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = server.URL
	ctx.HTTPClient = server.Client()

	orphan := database.PantryItem{ID: "manual_1", Name: "Apples", Qty: 1, PerServing: "{}",
		CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z"}
	assert.NilError(t, orphan.Insert(ctx.DB), "inserting an unowned item")

	userID, err := Do(stdctx.Background(), ctx, server.Email, server.Password)
	assert.NilError(t, err, "logging in")
	assert.Equal(t, userID, server.UserID, "user mismatch")

	s, err := session.Load(ctx.DB)
	assert.NilError(t, err, "loading session")
	assert.Equal(t, s, session.Session{UserID: server.UserID, Token: server.Token}, "session mismatch")

	assert.Equal(t, database.MustCount(t, "counting claimed items", ctx.DB, "pantry_items", "user_id = ?", server.UserID), 1, "unowned item should be claimed")
}

func TestDoWrongCredentials(t *testing.T) {
	server := testutils.NewRemoteServer(t)

	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = server.URL
	ctx.HTTPClient = server.Client()

	_, err := Do(stdctx.Background(), ctx, server.Email, "wrong")
	assert.ErrorIs(t, err, client.ErrInvalidLogin, "error mismatch")

	s, err := session.Load(ctx.DB)
	assert.NilError(t, err, "loading session")
	assert.Equal(t, s.LoggedIn(), false, "no session should be stored")
}
