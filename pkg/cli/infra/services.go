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

package infra

import (
	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/lookup"
	"github.com/foodlens/foodlens/pkg/cli/network"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/foodlens/foodlens/pkg/cli/sync"
	"github.com/pkg/errors"
)

// ErrNotLoggedIn is returned by commands that need a signed in user
var ErrNotLoggedIn = errors.New("not logged in. Run `foodlens login` first")

// RequireLogin returns ErrNotLoggedIn if nobody is signed in
func RequireLogin(ctx context.FoodlensCtx) error {
	if !ctx.LoggedIn() {
		return ErrNotLoggedIn
	}

	return nil
}

// UserError translates repository errors into messages for the user
func UserError(err error) error {
	if errors.Cause(err) == database.ErrNoUser {
		return ErrNotLoggedIn
	}

	return err
}

// NewClient returns a client for the configured remote
func NewClient(ctx context.FoodlensCtx) *client.Client {
	return client.New(ctx.APIEndpoint, ctx.APIKey, ctx.Version, ctx.HTTPClient)
}

// NewOrchestrator returns a sync orchestrator for the signed in user
func NewOrchestrator(ctx context.FoodlensCtx) *sync.Orchestrator {
	return &sync.Orchestrator{
		DB:      ctx.DB,
		Clock:   ctx.Clock,
		Remote:  NewClient(ctx),
		Tokens:  session.TokenStore{DB: ctx.DB},
		Network: network.Probe{Endpoint: ctx.APIEndpoint},
		UserID:  ctx.UserID,
	}
}

// NewLookupService returns a product lookup backed by the local cache and
// the default providers
func NewLookupService(ctx context.FoodlensCtx) *lookup.Service {
	return &lookup.Service{
		Cache: lookup.NewCache(ctx.DB, ctx.Clock),
		Providers: products.DefaultProviders(products.Options{
			AppName:    ctx.AppName,
			AppEmail:   ctx.AppEmail,
			FDCAPIKey:  ctx.FDCAPIKey,
			HTTPClient: ctx.HTTPClient,
		}),
	}
}
