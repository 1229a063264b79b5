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

package pantry

import (
	"fmt"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yesFlag bool

func newRmCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "d"},
		Short:   "Remove an item from the pantry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return remove(ctx, args[0])
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "remove without confirmation")

	return cmd
}

func remove(ctx context.FoodlensCtx, id string) error {
	if err := infra.RequireLogin(ctx); err != nil {
		return err
	}

	item, ok, err := pantry.Get(ctx.DB, ctx.UserID, id)
	if err != nil {
		return errors.Wrap(err, "finding the item")
	}
	if !ok || item.Lifecycle.Deleted() {
		return errors.Errorf("item %s not found", id)
	}

	if !yesFlag {
		confirmed, err := ui.Confirm(fmt.Sprintf("remove %s?", item.Name), false)
		if err != nil {
			return errors.Wrap(err, "getting confirmation")
		}
		if !confirmed {
			log.Warnf("aborted by user\n")
			return nil
		}
	}

	if err := pantry.SoftDelete(ctx.DB, ctx.Clock, ctx.UserID, id); err != nil {
		return infra.UserError(err)
	}

	log.Successf("removed %s\n", item.Name)

	return nil
}
