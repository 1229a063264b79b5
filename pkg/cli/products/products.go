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

// Package products resolves product codes to normalized product records using
// external providers
package products

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Nutrient keys of Nutrients
const (
	NutrientKcal    = "kcal"
	NutrientProtein = "protein"
	NutrientCarbs   = "carbs"
	NutrientFat     = "fat"
)

// Nutrients maps a nutrient name to its amount per serving. A nil amount is unknown.
type Nutrients map[string]*float64

// Product is a product record normalized from any provider
type Product struct {
	UPC         string    `json:"upc"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	ServingQty  float64   `json:"serving_qty"`
	ServingUnit string    `json:"serving_unit"`
	Nutrients   Nutrients `json:"nutrients"`
}

// ProviderError is an error from a provider. The lookup workflow swallows it
// and moves on to the next provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Err.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

const unknownItem = "Unknown item"

// num converts a JSON number or numeric string to a float. Anything else is unknown.
func num(v interface{}) *float64 {
	var f float64

	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}

	return &f
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}

func firstNum(vals ...interface{}) *float64 {
	for _, v := range vals {
		if n := num(v); n != nil {
			return n
		}
	}

	return nil
}

// OFFProduct is the subset of an OpenFoodFacts product used for normalization
type OFFProduct struct {
	ProductName string                 `json:"product_name"`
	GenericName string                 `json:"generic_name"`
	Brands      string                 `json:"brands"`
	BrandOwner  string                 `json:"brand_owner"`
	ServingSize string                 `json:"serving_size"`
	Nutriments  map[string]interface{} `json:"nutriments"`
}

// OFFResponse is the response of the OpenFoodFacts product endpoint
type OFFResponse struct {
	Status  int         `json:"status"`
	Product *OFFProduct `json:"product"`
}

var servingSizeRe = regexp.MustCompile(`([\d.]+)\s*([a-zA-Z]+)`)

// NormalizeOFF converts an OpenFoodFacts response. Per-serving nutrients are
// preferred over per-100g ones.
func NormalizeOFF(upc string, resp OFFResponse) *Product {
	p := resp.Product
	if p == nil {
		return nil
	}

	name := firstNonEmpty(p.ProductName, p.GenericName, unknownItem)
	brand := strings.TrimSpace(strings.Split(firstNonEmpty(p.Brands, p.BrandOwner), ",")[0])

	n := p.Nutriments
	if n == nil {
		n = map[string]interface{}{}
	}

	servingQty := 1.0
	servingUnit := "serving"
	if p.ServingSize != "" {
		if m := servingSizeRe.FindStringSubmatch(p.ServingSize); m != nil {
			if q := num(m[1]); q != nil && *q != 0 {
				servingQty = *q
			}
			servingUnit = strings.ToLower(m[2])
		}
	} else if n["energy-kcal_100g"] != nil {
		servingQty = 100
		servingUnit = "g"
	} else if n["energy-kcal_100ml"] != nil {
		servingQty = 100
		servingUnit = "ml"
	}

	return &Product{
		UPC:         upc,
		Name:        name,
		Brand:       brand,
		ServingQty:  servingQty,
		ServingUnit: servingUnit,
		Nutrients: Nutrients{
			NutrientKcal:    firstNum(n["energy-kcal_serving"], n["energy-kcal_100g"]),
			NutrientProtein: firstNum(n["proteins_serving"], n["proteins_100g"]),
			NutrientCarbs:   firstNum(n["carbohydrates_serving"], n["carbohydrates_100g"]),
			NutrientFat:     firstNum(n["fat_serving"], n["fat_100g"]),
		},
	}
}

// FDCNutrient is a label nutrient of a USDA FoodData Central food
type FDCNutrient struct {
	Value interface{} `json:"value"`
}

// FDCFood is the subset of a USDA FoodData Central branded food used for normalization
type FDCFood struct {
	FDCID           int                     `json:"fdcId"`
	Description     string                  `json:"description"`
	BrandName       string                  `json:"brandName"`
	BrandOwner      string                  `json:"brandOwner"`
	ServingSize     interface{}             `json:"servingSize"`
	ServingSizeUnit string                  `json:"servingSizeUnit"`
	LabelNutrients  map[string]*FDCNutrient `json:"labelNutrients"`
}

func (f FDCFood) labelValue(key string) *float64 {
	ln, ok := f.LabelNutrients[key]
	if !ok || ln == nil {
		return nil
	}

	return num(ln.Value)
}

// NormalizeFDC converts a FoodData Central food
func NormalizeFDC(upc string, f *FDCFood) *Product {
	if f == nil {
		return nil
	}

	servingQty := 1.0
	if q := num(f.ServingSize); q != nil && *q != 0 {
		servingQty = *q
	}
	servingUnit := "serving"
	if f.ServingSizeUnit != "" {
		servingUnit = strings.ToLower(f.ServingSizeUnit)
	}

	return &Product{
		UPC:         upc,
		Name:        firstNonEmpty(f.Description, f.BrandName, f.BrandOwner, unknownItem),
		Brand:       firstNonEmpty(f.BrandName, f.BrandOwner),
		ServingQty:  servingQty,
		ServingUnit: servingUnit,
		Nutrients: Nutrients{
			NutrientKcal:    f.labelValue("calories"),
			NutrientProtein: f.labelValue("protein"),
			NutrientCarbs:   f.labelValue("carbohydrates"),
			NutrientFat:     f.labelValue("fat"),
		},
	}
}

// UPCItem is an item of a UPCItemDB lookup response
type UPCItem struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Brand        string `json:"brand"`
	Manufacturer string `json:"manufacturer"`
}

// NormalizeUPCItemDB converts a UPCItemDB item. It carries no nutrients.
func NormalizeUPCItemDB(upc string, item *UPCItem) *Product {
	if item == nil {
		return nil
	}

	return &Product{
		UPC:         upc,
		Name:        firstNonEmpty(item.Title, item.Description, unknownItem),
		Brand:       firstNonEmpty(item.Brand, item.Manufacturer),
		ServingQty:  1,
		ServingUnit: "unit",
		Nutrients:   Nutrients{},
	}
}
