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

package validate

import (
	"fmt"
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
)

func TestItemName(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{
			input:    "Milk",
			expected: nil,
		},
		{
			input:    "Peanut butter (crunchy)",
			expected: nil,
		},
		{
			input:    "",
			expected: ErrNameEmpty,
		},
		{
			input:    "   ",
			expected: ErrNameEmpty,
		},
		{
			input:    "oat\nmilk",
			expected: ErrNameMultiline,
		},
		{
			input:    "oat\r\nmilk",
			expected: ErrNameMultiline,
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			assert.Equal(t, ItemName(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestCode(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{
			input:    "3017620422003",
			expected: nil,
		},
		{
			input:    " 0123 ",
			expected: nil,
		},
		{
			input:    "",
			expected: nil,
		},
		{
			input:    "00012345678905",
			expected: nil,
		},
		{
			input:    "000123456789051",
			expected: ErrCodeTooLong,
		},
		{
			input:    "30176-2042",
			expected: ErrCodeNotNumeric,
		},
		{
			input:    "abc",
			expected: ErrCodeNotNumeric,
		},
		{
			input:    "301 762",
			expected: ErrCodeNotNumeric,
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			assert.Equal(t, Code(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, Quantity(0), nil, "zero")
	assert.Equal(t, Quantity(2.5), nil, "positive")
	assert.Equal(t, Quantity(-1), ErrQuantityNegative, "negative")
}
