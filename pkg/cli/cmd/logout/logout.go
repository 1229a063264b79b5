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
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/favorites"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  foodlens logout`

// NewCmd returns a new logout command
func NewCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Sign out. Local data is kept for the next sign in.",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// unsynced counts the changes of the user that were not pushed yet
func unsynced(ctx context.FoodlensCtx) (int, error) {
	items, err := pantry.GetDirty(ctx.DB, ctx.UserID)
	if err != nil {
		return 0, err
	}
	favs, err := favorites.GetDirty(ctx.DB, ctx.UserID)
	if err != nil {
		return 0, err
	}

	return len(items) + len(favs), nil
}

// Do performs logout
func Do(ctx context.FoodlensCtx) error {
	if err := infra.RequireLogin(ctx); err != nil {
		return err
	}

	n, err := unsynced(ctx)
	if err != nil {
		return errors.Wrap(err, "counting unsynced changes")
	}
	if n > 0 {
		log.Warnf("%d changes are not synced yet. They will be pushed on your next sync.\n", n)
	}

	if err := session.Clear(ctx.DB); err != nil {
		return errors.Wrap(err, "clearing the session")
	}

	return nil
}

func newRun(ctx context.FoodlensCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		err := Do(ctx)
		if err == infra.ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
