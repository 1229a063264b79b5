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

// Package consts provides definitions of constants
package consts

var (
	// FoodlensDirName is the name of the directory containing foodlens files
	FoodlensDirName = "foodlens"
	// FoodlensDBFileName is a filename for the Foodlens SQLite database
	FoodlensDBFileName = "foodlens.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "foodlensrc"
	// EnvFilename is the name of the optional dotenv file placed next to the config file
	EnvFilename = ".env"

	// DefaultFavoriteSource is the namespace of favorites when none is given
	DefaultFavoriteSource = "themealdb"
	// DefaultLookupTTLDays is the number of days a cached product lookup stays fresh
	DefaultLookupTTLDays = 30

	// KVPantryLastPull is the prefix of the key holding the pantry pull cursor of a user
	KVPantryLastPull = "pantry:last_pull"
	// KVPantryLastSyncAt is the prefix of the key holding the time a user's pantry last synced
	KVPantryLastSyncAt = "pantry:last_sync_at"
	// KVFavsLastPull is the prefix of the key holding the favorites pull cursor of a user
	KVFavsLastPull = "favs:last_pull"
	// KVSessionToken is the key of the session token
	KVSessionToken = "session:token"
	// KVSessionUserID is the key of the id of the signed in user
	KVSessionUserID = "session:user_id"
)
