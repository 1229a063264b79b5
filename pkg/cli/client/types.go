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

package client

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Flag is a boolean that also accepts 0/1 and null on the wire
type Flag bool

// UnmarshalJSON decodes true, false, numbers and null
func (f *Flag) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))

	switch s {
	case "true":
		*f = true
	case "false", "null", "":
		*f = false
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Errorf("invalid flag %s", s)
		}
		*f = n != 0
	}

	return nil
}

// Text is a string that also accepts numbers and null on the wire
type Text string

// UnmarshalJSON decodes strings, numbers and null
func (t *Text) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return errors.Errorf("invalid text %s", string(trimmed))
	}
	*t = Text(n.String())

	return nil
}

// PantryRow is a pantry item as exchanged with the remote
type PantryRow struct {
	ID         string          `json:"id"`
	UPC        *string         `json:"upc"`
	Name       string          `json:"name"`
	Brand      *string         `json:"brand"`
	Qty        float64         `json:"qty"`
	Unit       *string         `json:"unit"`
	PerServing json.RawMessage `json:"per_serving"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
	Deleted    Flag            `json:"deleted"`
}

// FavoriteRow is a meal favorite as exchanged with the remote. JSON is the
// full meal detail object.
type FavoriteRow struct {
	MealID    Text            `json:"meal_id"`
	Source    string          `json:"source"`
	Title     string          `json:"title"`
	Thumb     string          `json:"thumb"`
	JSON      json.RawMessage `json:"json"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Deleted   Flag            `json:"deleted"`
}

// ObjectText returns the text to store for a JSON object field. A JSON string
// is unquoted, null or absence yields "{}".
func ObjectText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}"
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	return string(trimmed)
}

// StringPtr returns nil for an empty string and a pointer to s otherwise
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// StringValue dereferences s. nil yields an empty string.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
