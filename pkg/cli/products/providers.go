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

package products

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/pkg/errors"
)

// Default provider endpoints
const (
	DefaultOFFBaseURL       = "https://world.openfoodfacts.org"
	DefaultFDCBaseURL       = "https://api.nal.usda.gov/fdc/v1"
	DefaultUPCItemDBBaseURL = "https://api.upcitemdb.com/prod/trial"
)

const offFields = "product_name,brands,brand_owner,generic_name,serving_size,nutriments"

// Provider resolves a product code to a product. A nil product with a nil
// error means the provider does not know the code.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, upc string) (*Product, error)
}

func httpClient(hc *http.Client) *http.Client {
	if hc != nil {
		return hc
	}

	return http.DefaultClient
}

func getJSON(ctx context.Context, hc *http.Client, endpoint string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug("HTTP GET %s\n", req.URL.Path)

	res, err := httpClient(hc).Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	return res, nil
}

// decodeBody decodes a JSON body. A body that is not valid JSON decodes to ok=false.
func decodeBody(res *http.Response, v interface{}) bool {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		log.Debug("decoding response body: %s\n", err.Error())
		return false
	}

	return true
}

func isOK(res *http.Response) bool {
	return res.StatusCode >= 200 && res.StatusCode < 300
}

// OpenFoodFacts looks products up in the OpenFoodFacts database
type OpenFoodFacts struct {
	BaseURL    string
	AppName    string
	AppEmail   string
	HTTPClient *http.Client
}

// Name returns the provider name
func (p *OpenFoodFacts) Name() string {
	return "openfoodfacts"
}

// UserAgent is the User-Agent OpenFoodFacts requires from API clients
func (p *OpenFoodFacts) UserAgent() string {
	return fmt.Sprintf("%s/1.0 (%s)", p.AppName, p.AppEmail)
}

// Fetch gets the product. Responses without status 1 are unknown products.
func (p *OpenFoodFacts) Fetch(ctx context.Context, upc string) (*Product, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultOFFBaseURL
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s?fields=%s", base, url.PathEscape(upc), offFields)
	res, err := getJSON(ctx, p.HTTPClient, endpoint, map[string]string{
		"User-Agent": p.UserAgent(),
	})
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	if !isOK(res) {
		res.Body.Close()
		return nil, nil
	}

	var data OFFResponse
	if !decodeBody(res, &data) {
		return nil, nil
	}
	if data.Status != 1 {
		return nil, nil
	}

	return NormalizeOFF(upc, data), nil
}

// FDC looks branded foods up in USDA FoodData Central. It is skipped when no
// API key is configured.
type FDC struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Name returns the provider name
func (p *FDC) Name() string {
	return "fdc"
}

type fdcSearchResp struct {
	Foods []FDCFood `json:"foods"`
}

func (p *FDC) base() string {
	if p.BaseURL == "" {
		return DefaultFDCBaseURL
	}

	return p.BaseURL
}

// Fetch searches for the code and uses the first match. When the match has no
// label nutrients, the food detail is fetched instead.
func (p *FDC) Fetch(ctx context.Context, upc string) (*Product, error) {
	if p.APIKey == "" {
		return nil, nil
	}

	v := url.Values{}
	v.Set("api_key", p.APIKey)
	v.Set("query", upc)
	v.Set("dataType", "Branded")
	v.Set("pageSize", "1")

	res, err := getJSON(ctx, p.HTTPClient, fmt.Sprintf("%s/foods/search?%s", p.base(), v.Encode()), nil)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	if !isOK(res) {
		res.Body.Close()
		return nil, nil
	}

	var search fdcSearchResp
	if !decodeBody(res, &search) || len(search.Foods) == 0 {
		return nil, nil
	}

	f := search.Foods[0]
	if q := num(f.ServingSize); f.LabelNutrients != nil && q != nil && *q != 0 {
		return NormalizeFDC(upc, &f), nil
	}

	if f.FDCID == 0 {
		return nil, nil
	}

	dv := url.Values{}
	dv.Set("api_key", p.APIKey)
	res, err = getJSON(ctx, p.HTTPClient, fmt.Sprintf("%s/food/%d?%s", p.base(), f.FDCID, dv.Encode()), nil)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	if !isOK(res) {
		res.Body.Close()
		return nil, nil
	}

	var full FDCFood
	if !decodeBody(res, &full) {
		return nil, nil
	}

	return NormalizeFDC(upc, &full), nil
}

// UPCItemDB looks products up using the UPCItemDB trial endpoint
type UPCItemDB struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Name returns the provider name
func (p *UPCItemDB) Name() string {
	return "upcitemdb"
}

type upcItemDBResp struct {
	Code  string    `json:"code"`
	Items []UPCItem `json:"items"`
}

// Fetch gets the product. A 404 is an unknown product and any other error
// status is a ProviderError.
func (p *UPCItemDB) Fetch(ctx context.Context, upc string) (*Product, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultUPCItemDBBaseURL
	}

	v := url.Values{}
	v.Set("upc", upc)

	res, err := getJSON(ctx, p.HTTPClient, fmt.Sprintf("%s/lookup?%s", base, v.Encode()), nil)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}

	if !isOK(res) {
		defer res.Body.Close()

		if res.StatusCode == http.StatusNotFound {
			return nil, nil
		}

		body, _ := io.ReadAll(res.Body)
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "request failed"
		}

		return nil, &ProviderError{
			Provider: p.Name(),
			Err:      errors.Errorf("UPCItemDB %d: %s", res.StatusCode, msg),
		}
	}

	var data upcItemDBResp
	if !decodeBody(res, &data) {
		return nil, nil
	}
	if data.Code != "OK" || len(data.Items) == 0 {
		return nil, nil
	}

	return NormalizeUPCItemDB(upc, &data.Items[0]), nil
}

// Options configures the default provider chain
type Options struct {
	AppName    string
	AppEmail   string
	FDCAPIKey  string
	HTTPClient *http.Client
}

// DefaultProviders returns the providers in lookup order:
// OpenFoodFacts, FoodData Central, UPCItemDB
func DefaultProviders(opts Options) []Provider {
	return []Provider{
		&OpenFoodFacts{
			AppName:    opts.AppName,
			AppEmail:   opts.AppEmail,
			HTTPClient: opts.HTTPClient,
		},
		&FDC{
			APIKey:     opts.FDCAPIKey,
			HTTPClient: opts.HTTPClient,
		},
		&UPCItemDB{
			HTTPClient: opts.HTTPClient,
		},
	}
}
