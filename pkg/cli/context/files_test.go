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
	"os"
	"path/filepath"
	"testing"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/consts"
)

func assertDirsExist(t *testing.T, paths Paths) {
	for _, base := range []string{paths.Config, paths.Data, paths.Cache} {
		info, err := os.Stat(filepath.Join(base, consts.FoodlensDirName))
		assert.Equal(t, err, nil, "dir should exist under "+base)
		assert.Equal(t, info.IsDir(), true, "should be a directory")
	}
}

func TestInitDirs(t *testing.T) {
	tmpDir := t.TempDir()

	paths := Paths{
		Config: filepath.Join(tmpDir, "config"),
		Data:   filepath.Join(tmpDir, "data"),
		Cache:  filepath.Join(tmpDir, "cache"),
	}

	err := InitDirs(paths)
	assert.Equal(t, err, nil, "InitDirs should succeed")
	assertDirsExist(t, paths)

	err = InitDirs(paths)
	assert.Equal(t, err, nil, "InitDirs should succeed when dirs already exist")
	assertDirsExist(t, paths)
}

func TestDBPath(t *testing.T) {
	got := DBPath(Paths{Data: "/home/alice/.local/share"})
	assert.Equal(t, got, "/home/alice/.local/share/foodlens/foodlens.db", "path mismatch")
}

func TestRedact(t *testing.T) {
	ctx := FoodlensCtx{UserID: "user-1", SessionToken: "secret", APIKey: "anon"}

	got := Redact(ctx)
	assert.Equal(t, got.SessionToken, "1", "token mismatch")
	assert.Equal(t, got.APIKey, "1", "api key mismatch")
	assert.Equal(t, got.FDCAPIKey, "0", "fdc key mismatch")
	assert.Equal(t, got.UserID, "user-1", "user id should be kept")
	assert.Equal(t, ctx.SessionToken, "secret", "original should not change")
}
