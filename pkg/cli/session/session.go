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

// Package session stores the credentials of the signed in user and runs the
// steps that belong to the start of a user session
package session

import (
	"context"

	"github.com/foodlens/foodlens/pkg/cli/consts"
	"github.com/foodlens/foodlens/pkg/cli/cursor"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/pkg/errors"
)

// Session is the signed in user and the token used for remote procedures
type Session struct {
	UserID string
	Token  string
}

// LoggedIn returns true if the session has both a user and a token
func (s Session) LoggedIn() bool {
	return s.UserID != "" && s.Token != ""
}

// Load reads the stored session. A missing session yields a zero value.
func Load(db *database.DB) (Session, error) {
	var ret Session

	token, _, err := cursor.Get(db, consts.KVSessionToken)
	if err != nil {
		return ret, errors.Wrap(err, "getting session token")
	}
	userID, _, err := cursor.Get(db, consts.KVSessionUserID)
	if err != nil {
		return ret, errors.Wrap(err, "getting session user")
	}

	ret.Token = token
	ret.UserID = userID

	return ret, nil
}

// Save persists the session
func Save(db *database.DB, s Session) error {
	return database.WithTx(db, func(tx *database.DB) error {
		if err := cursor.Set(tx, consts.KVSessionToken, s.Token); err != nil {
			return errors.Wrap(err, "saving session token")
		}
		if err := cursor.Set(tx, consts.KVSessionUserID, s.UserID); err != nil {
			return errors.Wrap(err, "saving session user")
		}

		return nil
	})
}

// Clear removes the stored session. Local rows and sync cursors are kept.
func Clear(db *database.DB) error {
	return database.WithTx(db, func(tx *database.DB) error {
		if err := cursor.Delete(tx, consts.KVSessionToken); err != nil {
			return errors.Wrap(err, "deleting session token")
		}
		if err := cursor.Delete(tx, consts.KVSessionUserID); err != nil {
			return errors.Wrap(err, "deleting session user")
		}

		return nil
	})
}

// Start runs the one-off steps of a user session. Rows created before anyone
// signed in are claimed by the user. A failure is reported but does not
// prevent the session from starting.
func Start(db *database.DB, userID string) error {
	if err := database.RequireUser(userID); err != nil {
		return err
	}

	n, err := pantry.ClaimOrphans(db, userID)
	if err != nil {
		log.Warnf("could not claim unowned pantry items: %s\n", err.Error())
		return nil
	}
	if n > 0 {
		log.Debug("claimed %d unowned pantry items for %s\n", n, userID)
	}

	return nil
}

// TokenStore serves the stored session token to the sync orchestrator
type TokenStore struct {
	DB *database.DB
}

// ActiveToken returns the session token, or an empty string if signed out
func (s TokenStore) ActiveToken(ctx context.Context) (string, error) {
	token, _, err := cursor.Get(s.DB, consts.KVSessionToken)
	if err != nil {
		return "", errors.Wrap(err, "getting session token")
	}

	return token, nil
}
