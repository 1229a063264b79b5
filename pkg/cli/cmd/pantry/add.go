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
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/output"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/cli/validate"
	"github.com/spf13/cobra"
)

// addFlags are the options of the add command
type addFlags struct {
	upc         string
	brand       string
	qty         float64
	unit        string
	servingQty  float64
	kcal        float64
	protein     float64
	carbs       float64
	fat         float64
	nutrientSet map[string]bool
}

func newAddCmd(ctx context.FoodlensCtx) *cobra.Command {
	var flags addFlags

	cmd := &cobra.Command{
		Use:     "add <name>",
		Aliases: []string{"a"},
		Short:   "Add an item, or increase its quantity if it is already in the pantry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.nutrientSet = map[string]bool{}
			for _, name := range []string{products.NutrientKcal, products.NutrientProtein, products.NutrientCarbs, products.NutrientFat} {
				flags.nutrientSet[name] = cmd.Flags().Changed(name)
			}

			res, err := add(ctx, args[0], flags)
			if err != nil {
				return err
			}

			if res.Merged {
				log.Successf("merged into %s, now %s\n", res.ID, output.Number(res.Qty))
			} else {
				log.Successf("added %s\n", res.ID)
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.upc, "upc", "", "the product code")
	f.StringVar(&flags.brand, "brand", "", "the brand")
	f.Float64VarP(&flags.qty, "qty", "q", 1, "the quantity to add")
	f.StringVar(&flags.unit, "unit", "", "the unit of the quantity (defaults to serving)")
	f.Float64Var(&flags.servingQty, "serving-qty", 1, "the size of a serving")
	f.Float64Var(&flags.kcal, "kcal", 0, "energy per serving")
	f.Float64Var(&flags.protein, "protein", 0, "protein per serving, in grams")
	f.Float64Var(&flags.carbs, "carbs", 0, "carbohydrates per serving, in grams")
	f.Float64Var(&flags.fat, "fat", 0, "fat per serving, in grams")

	return cmd
}

func (f addFlags) nutrients() products.Nutrients {
	values := map[string]float64{
		products.NutrientKcal:    f.kcal,
		products.NutrientProtein: f.protein,
		products.NutrientCarbs:   f.carbs,
		products.NutrientFat:     f.fat,
	}

	ret := products.Nutrients{}
	for name, v := range values {
		if !f.nutrientSet[name] {
			continue
		}

		v := v
		ret[name] = &v
	}

	return ret
}

func add(ctx context.FoodlensCtx, name string, f addFlags) (pantry.MergeResult, error) {
	if err := infra.RequireLogin(ctx); err != nil {
		return pantry.MergeResult{}, err
	}

	if err := validate.ItemName(name); err != nil {
		return pantry.MergeResult{}, err
	}
	if err := validate.Code(f.upc); err != nil {
		return pantry.MergeResult{}, err
	}
	name = strings.TrimSpace(name)

	p := products.Product{
		UPC:         strings.TrimSpace(f.upc),
		Name:        name,
		Brand:       f.brand,
		ServingQty:  f.servingQty,
		ServingUnit: f.unit,
		Nutrients:   f.nutrients(),
	}

	res, err := pantry.AddOrMerge(ctx.DB, ctx.Clock, ctx.UserID, p, f.qty)
	if err != nil {
		return res, infra.UserError(err)
	}

	return res, nil
}
