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

package context

import (
	"testing"
	"time"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

// InitTestCtx initializes a test context with an in-memory database, a mock
// clock and a temporary directory for all paths. Nobody is signed in.
func InitTestCtx(t *testing.T) FoodlensCtx {
	tmpDir := t.TempDir()
	paths := Paths{
		Home:   tmpDir,
		Cache:  tmpDir,
		Config: tmpDir,
		Data:   tmpDir,
	}

	if err := InitDirs(paths); err != nil {
		t.Fatal(errors.Wrap(err, "creating test directories"))
	}

	c := clock.NewMock()
	c.SetNow(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))

	return FoodlensCtx{
		DB:            database.InitTestMemoryDB(t),
		Paths:         paths,
		Clock:         c,
		Version:       "test",
		LookupTTLDays: 30,
	}
}
