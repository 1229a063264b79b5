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
	"io"
	"os"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/output"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLsCmd(ctx context.FoodlensCtx) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"l", "list"},
		Short:   "List the items in your pantry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(ctx, os.Stdout)
		},
	}
}

func list(ctx context.FoodlensCtx, w io.Writer) error {
	if err := infra.RequireLogin(ctx); err != nil {
		return err
	}

	items, err := pantry.ListActive(ctx.DB, ctx.UserID)
	if err != nil {
		return errors.Wrap(err, "listing pantry items")
	}
	if len(items) == 0 {
		log.Info("your pantry is empty\n")
		return nil
	}

	return output.PantryTable(w, items)
}
