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

// Package pantry provides the commands managing the pantry of the signed in user
package pantry

import (
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/spf13/cobra"
)

var example = `
  foodlens pantry ls
  foodlens pantry add "Rolled oats" --qty 2 --unit cup --kcal 150
  foodlens pantry qty user-1|0123456789012 3
  foodlens pantry rm user-1|0123456789012`

// NewCmd returns a new pantry command
func NewCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pantry",
		Aliases: []string{"p"},
		Short:   "Manage the items in your pantry",
		Example: example,
	}

	cmd.AddCommand(newLsCmd(ctx))
	cmd.AddCommand(newAddCmd(ctx))
	cmd.AddCommand(newQtyCmd(ctx))
	cmd.AddCommand(newRmCmd(ctx))

	return cmd
}
