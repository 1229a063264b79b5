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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/foodlens/foodlens/pkg/cli/favorites"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/pantry"
	"github.com/foodlens/foodlens/pkg/cli/products"
	"github.com/foodlens/foodlens/pkg/cli/sync"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pkg/errors"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func render(w io.Writer, header []string, rows [][]string) error {
	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return errors.Wrap(err, "adding rows")
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, "rendering table")
	}

	return nil
}

// Number formats a quantity without trailing zeros
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Nutrient formats a nutrient value, or "-" if it is unknown
func Nutrient(v *float64) string {
	if v == nil {
		return "-"
	}

	return Number(*v)
}

// PantryTable writes the pantry items as a table
func PantryTable(w io.Writer, items []pantry.Item) error {
	rows := make([][]string, 0, len(items))
	for _, i := range items {
		rows = append(rows, []string{
			i.ID,
			i.Name,
			i.Brand,
			fmt.Sprintf("%s %s", Number(i.Qty), i.Unit),
			Nutrient(i.PerServing[products.NutrientKcal]),
			i.UpdatedAt,
		})
	}

	return render(w, []string{"id", "name", "brand", "qty", "kcal", "updated"}, rows)
}

// FavoritesTable writes the favorites as a table
func FavoritesTable(w io.Writer, favs []favorites.Favorite) error {
	rows := make([][]string, 0, len(favs))
	for _, f := range favs {
		rows = append(rows, []string{f.MealID, f.Source, f.Title, f.UpdatedAt})
	}

	return render(w, []string{"meal id", "source", "title", "updated"}, rows)
}

// ProductInfo prints a looked up product and its nutrients per serving
func ProductInfo(w io.Writer, p *products.Product) error {
	log.Infof("name: %s\n", p.Name)
	if p.Brand != "" {
		log.Infof("brand: %s\n", p.Brand)
	}
	log.Infof("upc: %s\n", p.UPC)
	log.Infof("serving: %s %s\n", Number(p.ServingQty), p.ServingUnit)

	names := make([]string, 0, len(p.Nutrients))
	for name := range p.Nutrients {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, Nutrient(p.Nutrients[name])})
	}

	return render(w, []string{"nutrient", "per serving"}, rows)
}

func domainResult(name string, d sync.DomainResult) {
	if d.Push.Error != "" {
		log.Warnf("%s push failed: %s\n", name, d.Push.Error)
	} else {
		log.Plainf("  %s pushed: %d\n", name, d.Push.Pushed)
	}

	if d.Pull.Error != "" {
		log.Warnf("%s pull failed: %s\n", name, d.Pull.Error)
	} else {
		log.Plainf("  %s pulled: %d\n", name, d.Pull.Pulled)
	}
}

// SyncResult prints the outcome of a sync
func SyncResult(res sync.Result) {
	if res.Skipped != "" {
		log.Warnf("sync skipped: %s\n", res.Skipped)
		return
	}

	domainResult("pantry", res.Pantry)
	domainResult("favorites", res.Favs)

	if res.Pantry.Failed() || res.Favs.Failed() {
		log.Warnf("sync finished with errors\n")
		return
	}

	log.Success("sync finished\n")
}
