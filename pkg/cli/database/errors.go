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

package database

import "github.com/pkg/errors"

// ErrNoUser is returned by operations that require an active user when none is set
var ErrNoUser = errors.New("no user")

// RequireUser returns ErrNoUser if the given user id is empty
func RequireUser(userID string) error {
	if userID == "" {
		return ErrNoUser
	}

	return nil
}
