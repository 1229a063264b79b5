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

// Package lookup provides the command looking up a product by its code
package lookup

import (
	"io"
	"os"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/lookup"
	"github.com/foodlens/foodlens/pkg/cli/output"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  foodlens lookup 3017620422003

  # ignore the cached result
  foodlens lookup 3017620422003 --bypass-cache

  # use a cached result however old it is
  foodlens lookup 3017620422003 --no-expiry

  # add two servings of the product to the pantry
  foodlens lookup 3017620422003 --add 2`

var bypassCacheFlag bool
var ttlFlag int
var noExpiryFlag bool
var addFlag float64

// ErrNotFound is returned when no provider knows the product
var ErrNotFound = errors.New("product not found")

// NewCmd returns a new lookup command
func NewCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lookup <upc>",
		Aliases: []string{"upc"},
		Short:   "Look up the nutrition facts of a product by its barcode",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&bypassCacheFlag, "bypass-cache", false, "query the providers even if the product is cached")
	f.IntVar(&ttlFlag, "ttl", 0, "the max age of a cached result in days (defaults to value in config)")
	f.BoolVar(&noExpiryFlag, "no-expiry", false, "use a cached result regardless of its age")
	f.Float64Var(&addFlag, "add", 0, "add this many servings of the product to the pantry")

	return cmd
}

func options(ctx context.FoodlensCtx) lookup.Options {
	opts := lookup.DefaultOptions()
	// a configured zero disables expiry
	opts.TTLDays = ctx.LookupTTLDays
	if ttlFlag > 0 {
		opts.TTLDays = ttlFlag
	}
	if noExpiryFlag {
		opts.TTLDays = 0
	}
	opts.BypassCache = bypassCacheFlag

	return opts
}

// Do looks the product up and adds it to the pantry if requested
func Do(cmd *cobra.Command, ctx context.FoodlensCtx, svc *lookup.Service, code string, w io.Writer) error {
	if err := validate.Code(code); err != nil {
		return err
	}
	if addFlag > 0 {
		if err := infra.RequireLogin(ctx); err != nil {
			return err
		}
	}

	p, err := svc.Lookup(cmd.Context(), code, options(ctx))
	if err != nil {
		return errors.Wrap(err, "looking up the product")
	}
	if p == nil {
		return ErrNotFound
	}

	if err := output.ProductInfo(w, p); err != nil {
		return err
	}

	if addFlag <= 0 {
		return nil
	}

	res, err := pantry.AddOrMerge(ctx.DB, ctx.Clock, ctx.UserID, *p, addFlag)
	if err != nil {
		return infra.UserError(err)
	}

	if res.Merged {
		log.Successf("%s is in the pantry, now %s\n", p.Name, output.Number(res.Qty))
	} else {
		log.Successf("added %s to the pantry\n", p.Name)
	}

	return nil
}

func newRun(ctx context.FoodlensCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return Do(cmd, ctx, infra.NewLookupService(ctx), args[0], os.Stdout)
	}
}
