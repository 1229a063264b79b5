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

// Package validate provides validators for user input
package validate

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// maxCodeLength is the length of a GTIN-14, the longest product code
const maxCodeLength = 14

// ErrNameEmpty is an error for an empty item name
var ErrNameEmpty = errors.New("The name is empty")

// ErrNameMultiline is an error for an item name that has linebreaks
var ErrNameMultiline = errors.New("The name contains multiple lines")

// ErrCodeNotNumeric is an error for a product code with characters other than digits
var ErrCodeNotNumeric = errors.New("The product code can only contain digits")

// ErrCodeTooLong is an error for a product code longer than a GTIN-14
var ErrCodeTooLong = errors.New("The product code is too long")

// ErrQuantityNegative is an error for a quantity below zero
var ErrQuantityNegative = errors.New("The quantity cannot be negative")

// ItemName validates the name of a pantry item
func ItemName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameEmpty
	}

	if strings.ContainsAny(name, "\r\n") {
		return ErrNameMultiline
	}

	return nil
}

// Code validates a barcode. Surrounding whitespace is ignored.
func Code(code string) error {
	clean := strings.TrimSpace(code)

	for _, r := range clean {
		if !unicode.IsDigit(r) {
			return ErrCodeNotNumeric
		}
	}

	if len(clean) > maxCodeLength {
		return ErrCodeTooLong
	}

	return nil
}

// Quantity validates a quantity set by the user
func Quantity(qty float64) error {
	if qty < 0 {
		return ErrQuantityNegative
	}

	return nil
}
