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

package ui

import (
	"strings"
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
)

func withStdin(t *testing.T, input string) {
	prev := Stdin
	Stdin = strings.NewReader(input)
	t.Cleanup(func() { Stdin = prev })
}

func TestPromptInput(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "alice@example.com\n", expected: "alice@example.com"},
		{input: "  bob@example.com \r\n", expected: "bob@example.com"},
		{input: "no-newline", expected: "no-newline"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			withStdin(t, tc.input)

			var got string
			assert.NilError(t, PromptInput("email", &got), "prompting")
			assert.Equal(t, got, tc.expected, "input mismatch")
		})
	}
}

func TestPromptPasswordPiped(t *testing.T) {
	withStdin(t, "pass1234\n")

	var got string
	assert.NilError(t, PromptPassword("password", &got), "prompting")
	assert.Equal(t, got, "pass1234", "password mismatch")
}

func TestConfirm(t *testing.T) {
	withStdin(t, "y\n")

	ok, err := Confirm("remove Milk?", false)
	assert.NilError(t, err, "confirming")
	assert.Equal(t, ok, true, "confirmation mismatch")
}
