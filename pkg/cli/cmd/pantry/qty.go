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
	"strconv"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newQtyCmd(ctx context.FoodlensCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <id> <quantity>",
		Short: "Set the quantity of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.Errorf("invalid quantity %s", args[1])
			}

			if err := setQty(ctx, args[0], qty); err != nil {
				return err
			}

			log.Successf("updated %s\n", args[0])
			return nil
		},
	}
}

func setQty(ctx context.FoodlensCtx, id string, qty float64) error {
	if err := infra.RequireLogin(ctx); err != nil {
		return err
	}
	if err := validate.Quantity(qty); err != nil {
		return err
	}

	err := pantry.UpdateQuantity(ctx.DB, ctx.Clock, ctx.UserID, id, qty)
	if errors.Cause(err) == pantry.ErrNotFound {
		return errors.Errorf("item %s not found", id)
	} else if err != nil {
		return infra.UserError(err)
	}

	return nil
}
