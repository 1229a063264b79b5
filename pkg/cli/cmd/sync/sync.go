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

package sync

import (
	"time"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/output"
	"github.com/foodlens/foodlens/pkg/cli/sync"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  foodlens sync

  # print when the pantry last synced
  foodlens sync --status`

var statusFlag bool
var apiEndpointFlag string

// NewCmd returns a new sync command
func NewCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync the pantry and favorites with the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&statusFlag, "status", false, "print the time of the last sync instead of syncing")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

func printStatus(ctx context.FoodlensCtx) error {
	last, err := sync.LastSyncAt(ctx.DB, ctx.UserID)
	if err != nil {
		return err
	}
	if last == "" {
		log.Info("never synced\n")
		return nil
	}

	t, ok := clock.ParseISO(last)
	if !ok {
		log.Infof("last synced at %s\n", last)
		return nil
	}

	log.Infof("last synced at %s\n", t.Local().Format("Jan 2, 2006 3:04pm (MST)"))
	log.Debug("%s ago\n", ctx.Clock.Now().Sub(t).Round(time.Second))

	return nil
}

func newRun(ctx context.FoodlensCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := infra.RequireLogin(ctx); err != nil {
			return err
		}

		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		if statusFlag {
			return printStatus(ctx)
		}

		log.Debug("syncing as %s\n", ctx.UserID)

		res, err := infra.NewOrchestrator(ctx).SyncNow(cmd.Context())
		if err != nil {
			return errors.Wrap(infra.UserError(err), "syncing")
		}

		output.SyncResult(res)

		return nil
	}
}
