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

// Package migrate brings the local database schema up to date
package migrate

import (
	"embed"
	"fmt"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/pkg/errors"
	sqlmigrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// TableName is the table in which applied migrations are recorded
const TableName = "schema_migrations"

func getSource() sqlmigrate.MigrationSource {
	return &sqlmigrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// Run applies all pending migrations and returns the number applied
func Run(db *database.DB) (int, error) {
	if err := Legacy(db); err != nil {
		return 0, errors.Wrap(err, "upgrading legacy tables")
	}

	ms := sqlmigrate.MigrationSet{TableName: TableName}
	n, err := ms.Exec(db.Conn, "sqlite3", getSource(), sqlmigrate.Up)
	if err != nil {
		return n, errors.Wrap(err, "running migrations")
	}

	log.Debug("applied %d migrations\n", n)

	return n, nil
}

// legacyColumn is a column that databases created before sync support may lack
type legacyColumn struct {
	table    string
	name     string
	def      string
	backfill string
}

var legacyColumns = []legacyColumn{
	{table: "pantry_items", name: "user_id", def: "TEXT"},
	{table: "pantry_items", name: "dirty", def: "INTEGER", backfill: "UPDATE pantry_items SET dirty = 0 WHERE dirty IS NULL"},
	{table: "pantry_items", name: "deleted", def: "INTEGER", backfill: "UPDATE pantry_items SET deleted = 0 WHERE deleted IS NULL"},
	{table: "meal_favorites", name: "updated_at", def: "TEXT", backfill: "UPDATE meal_favorites SET updated_at = COALESCE(updated_at, strftime('%Y-%m-%dT%H:%M:%fZ', 'now')) WHERE updated_at IS NULL"},
	{table: "meal_favorites", name: "dirty", def: "INTEGER", backfill: "UPDATE meal_favorites SET dirty = 0 WHERE dirty IS NULL"},
	{table: "meal_favorites", name: "deleted", def: "INTEGER", backfill: "UPDATE meal_favorites SET deleted = 0 WHERE deleted IS NULL"},
}

func tableColumns(db *database.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info('%s')", table))
	if err != nil {
		return nil, errors.Wrapf(err, "reading columns of %s", table)
	}
	defer rows.Close()

	ret := map[string]bool{}
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, errors.Wrap(err, "scanning column info")
		}

		ret[name] = true
	}

	return ret, rows.Err()
}

// Legacy adds the sync columns to tables created by versions of the app that
// predate synchronization. Tables that do not exist yet are left to the migrations.
func Legacy(db *database.DB) error {
	cache := map[string]map[string]bool{}

	for _, c := range legacyColumns {
		cols, ok := cache[c.table]
		if !ok {
			var err error
			cols, err = tableColumns(db, c.table)
			if err != nil {
				return err
			}
			cache[c.table] = cols
		}

		// table not created yet
		if len(cols) == 0 || cols[c.name] {
			continue
		}

		log.Debug("adding legacy column %s.%s\n", c.table, c.name)

		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.def)); err != nil {
			return errors.Wrapf(err, "adding column %s.%s", c.table, c.name)
		}
		if c.backfill != "" {
			if _, err := db.Exec(c.backfill); err != nil {
				return errors.Wrapf(err, "backfilling %s.%s", c.table, c.name)
			}
		}

		cols[c.name] = true
	}

	return nil
}
