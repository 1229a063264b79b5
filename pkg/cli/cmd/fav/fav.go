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

// Package fav provides the commands managing favorite meals
package fav

import (
	"io"
	"os"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/favorites"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  foodlens fav ls
  foodlens fav add 52772 --title "Teriyaki Chicken Casserole"
  foodlens fav rm 52772`

var sourceFlag string
var titleFlag string
var thumbFlag string

// NewCmd returns a new fav command
func NewCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"f", "favorites"},
		Short:   "Manage your favorite meals",
		Example: example,
	}

	cmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "the catalog of the meal (defaults to themealdb)")

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"l", "list"},
		Short:   "List your favorite meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(ctx, os.Stdout)
		},
	}

	add := &cobra.Command{
		Use:   "add <meal id>",
		Short: "Favorite a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := set(ctx, args[0], true); err != nil {
				return err
			}

			log.Successf("favorited %s\n", args[0])
			return nil
		},
	}
	add.Flags().StringVar(&titleFlag, "title", "", "the name of the meal")
	add.Flags().StringVar(&thumbFlag, "thumb", "", "the url of the meal thumbnail")

	rm := &cobra.Command{
		Use:     "rm <meal id>",
		Aliases: []string{"remove"},
		Short:   "Unfavorite a meal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := set(ctx, args[0], false); err != nil {
				return err
			}

			log.Successf("unfavorited %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(ls, add, rm)

	return cmd
}

func list(ctx context.FoodlensCtx, w io.Writer) error {
	if err := infra.RequireLogin(ctx); err != nil {
		return err
	}

	favs, err := favorites.ListActive(ctx.DB, ctx.UserID)
	if err != nil {
		return errors.Wrap(err, "listing favorites")
	}
	if len(favs) == 0 {
		log.Info("no favorite meals yet\n")
		return nil
	}

	return output.FavoritesTable(w, favs)
}

func set(ctx context.FoodlensCtx, mealID string, flag bool) error {
	if err := infra.RequireLogin(ctx); err != nil {
		return err
	}

	mealID = strings.TrimSpace(mealID)
	detail := favorites.Detail{"idMeal": mealID}

	if flag {
		merged, err := mergeDetail(ctx, mealID)
		if err != nil {
			return err
		}

		return infra.UserError(favorites.SetFavorite(ctx.DB, ctx.Clock, ctx.UserID, merged, true, sourceFlag))
	}

	ok, err := favorites.IsFavorite(ctx.DB, ctx.UserID, detail.MealID(), sourceFlag)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("%s is not a favorite", mealID)
	}

	return infra.UserError(favorites.SetFavorite(ctx.DB, ctx.Clock, ctx.UserID, detail, false, sourceFlag))
}

// mergeDetail applies the flags to the detail of the stored favorite, so that
// adding a favorite again keeps what the flags leave out
func mergeDetail(ctx context.FoodlensCtx, mealID string) (favorites.Detail, error) {
	ret := favorites.Detail{}

	existing, ok, err := favorites.Get(ctx.DB, ctx.UserID, mealID, sourceFlag)
	if err != nil {
		return nil, errors.Wrap(err, "getting the stored favorite")
	}
	if ok {
		for k, v := range existing.Detail {
			ret[k] = v
		}
		if ret.Title() == "" && existing.Title != "" {
			ret["strMeal"] = existing.Title
		}
		if ret.Thumb() == "" && existing.Thumb != "" {
			ret["strMealThumb"] = existing.Thumb
		}
	}

	ret["idMeal"] = mealID
	if titleFlag != "" {
		ret["strMeal"] = titleFlag
		delete(ret, "title")
	}
	if thumbFlag != "" {
		ret["strMealThumb"] = thumbFlag
		delete(ret, "thumb")
	}

	return ret, nil
}
