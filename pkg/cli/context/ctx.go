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

// Package context defines the foodlens runtime context
package context

import (
	"net/http"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// FoodlensCtx is a context holding the information of the current runtime
type FoodlensCtx struct {
	Paths       Paths
	Version     string
	DB          *database.DB
	Clock       clock.Clock
	HTTPClient  *http.Client
	APIEndpoint string
	APIKey      string
	FDCAPIKey   string
	AppName     string
	AppEmail    string

	LookupTTLDays int

	// UserID and SessionToken are empty when nobody is signed in
	UserID       string
	SessionToken string
}

// LoggedIn returns true if a user is signed in
func (c FoodlensCtx) LoggedIn() bool {
	return c.UserID != "" && c.SessionToken != ""
}

func redactValue(v string) string {
	if v != "" {
		return "1"
	}

	return "0"
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx FoodlensCtx) FoodlensCtx {
	ctx.SessionToken = redactValue(ctx.SessionToken)
	ctx.APIKey = redactValue(ctx.APIKey)
	ctx.FDCAPIKey = redactValue(ctx.FDCAPIKey)

	return ctx
}
