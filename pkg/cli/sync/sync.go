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

// Package sync pushes local changes to the remote and pulls remote changes
// into the local store
package sync

import (
	"context"

	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/cursor"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/network"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Reasons for a skipped sync
const (
	SkippedOffline = "offline"
	SkippedNoToken = "no-token"
)

// Remote is the set of remote procedures used by a sync
type Remote interface {
	PantryPush(ctx context.Context, token string, items []client.PantryRow) (client.PushResp, error)
	PantryPull(ctx context.Context, token string, since *string) ([]client.PantryRow, error)
	FavsPush(ctx context.Context, token string, items []client.FavoriteRow) (client.PushResp, error)
	FavsPull(ctx context.Context, token string, since *string) ([]client.FavoriteRow, error)
}

// TokenSource provides the session token. An empty token means signed out.
type TokenSource interface {
	ActiveToken(ctx context.Context) (string, error)
}

// PushResult is the outcome of a push phase. Error is set if the phase failed.
type PushResult struct {
	Pushed int
	Error  string
}

// PullResult is the outcome of a pull phase. Error is set if the phase failed.
type PullResult struct {
	Pulled int
	Error  string
}

// DomainResult is the outcome of the phases of one domain
type DomainResult struct {
	Push PushResult
	Pull PullResult
}

// Failed returns true if any phase of the domain failed
func (d DomainResult) Failed() bool {
	return d.Push.Error != "" || d.Pull.Error != ""
}

// Result is the outcome of a sync. If Skipped is set, no phase ran.
type Result struct {
	Skipped string
	Pantry  DomainResult
	Favs    DomainResult
}

// Orchestrator runs syncs for a user
type Orchestrator struct {
	DB      *database.DB
	Clock   clock.Clock
	Remote  Remote
	Tokens  TokenSource
	Network network.Prober
	UserID  string

	group singleflight.Group
}

// SyncNow syncs the pantry, then the favorites. A call made while another is
// in flight waits for it and shares its result. Once started, the phases run
// to completion even if ctx is cancelled. A failed phase is reported in the
// result and does not prevent the other phases from running.
func (o *Orchestrator) SyncNow(ctx context.Context) (Result, error) {
	if err := database.RequireUser(o.UserID); err != nil {
		return Result{}, err
	}

	detached := context.WithoutCancel(ctx)
	ch := o.group.DoChan(o.UserID, func() (interface{}, error) {
		return o.run(detached)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("joined a sync in flight\n")
		}
		if res.Err != nil {
			return Result{}, res.Err
		}

		return res.Val.(Result), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (o *Orchestrator) online(ctx context.Context) bool {
	state, err := o.Network.Probe(ctx)
	if err != nil {
		log.Debug("probing network: %s\n", err.Error())
		return false
	}

	return state.Online()
}

func (o *Orchestrator) run(ctx context.Context) (Result, error) {
	if !o.online(ctx) {
		return Result{Skipped: SkippedOffline}, nil
	}

	token, err := o.Tokens.ActiveToken(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "getting session token")
	}
	if token == "" {
		return Result{Skipped: SkippedNoToken}, nil
	}

	var ret Result

	n, err := o.pushPantry(ctx, token)
	ret.Pantry.Push = pushResult(n, err, "sync push error")
	n, err = o.pullPantry(ctx, token)
	ret.Pantry.Pull = pullResult(n, err, "sync pull error")

	n, err = o.pushFavs(ctx, token)
	ret.Favs.Push = pushResult(n, err, "favs push error")
	n, err = o.pullFavs(ctx, token)
	ret.Favs.Pull = pullResult(n, err, "favs pull error")

	return ret, nil
}

func pushResult(n int, err error, label string) PushResult {
	if err != nil {
		log.Warnf("[%s] %s\n", label, err.Error())
		return PushResult{Error: err.Error()}
	}

	return PushResult{Pushed: n}
}

func pullResult(n int, err error, label string) PullResult {
	if err != nil {
		log.Warnf("[%s] %s\n", label, err.Error())
		return PullResult{Error: err.Error()}
	}

	return PullResult{Pulled: n}
}

// since returns the stored cursor, or nil on the first pull
func (o *Orchestrator) since(key string) (*string, error) {
	v, ok, err := cursor.Get(o.DB, key)
	if err != nil {
		return nil, errors.Wrap(err, "getting the pull cursor")
	}
	if !ok || v == "" {
		return nil, nil
	}

	return &v, nil
}

// advance moves the cursor to the latest of the given timestamps
func (o *Orchestrator) advance(key string, updatedAts []string) error {
	latest := ""
	for _, u := range updatedAts {
		if u != "" && (latest == "" || clock.CompareISO(u, latest) > 0) {
			latest = u
		}
	}

	if _, err := cursor.Advance(o.DB, key, latest); err != nil {
		return errors.Wrap(err, "advancing the pull cursor")
	}

	return nil
}

// LastSyncAt returns the time of the last pantry pull of the user, or an
// empty string if there was none
func LastSyncAt(db *database.DB, userID string) (string, error) {
	v, _, err := cursor.Get(db, cursor.PantryLastSyncAt(userID))
	if err != nil {
		return "", errors.Wrap(err, "getting last sync time")
	}

	return v, nil
}
