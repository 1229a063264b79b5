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

// Command schema regenerates database/schema.sql, the local schema used to
// set up test databases, by running every migration on a scratch database
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/migrate"
	"github.com/pkg/errors"
)

const header = `-- This is the final state of the local schema after all migrations in pkg/cli/migrate/migrations.
-- It is used to set up test databases.
`

func dump(db *database.DB) (string, error) {
	rows, err := db.Query(`SELECT sql FROM sqlite_master
		WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' AND tbl_name != ?
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, rowid`, migrate.TableName)
	if err != nil {
		return "", errors.Wrap(err, "querying schema")
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString(header)
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", errors.Wrap(err, "scanning schema")
		}

		b.WriteString(stmt)
		b.WriteString(";\n")
	}

	return b.String(), rows.Err()
}

func run(tmpDir, outputPath string) error {
	db, err := database.Open(filepath.Join(tmpDir, "schema.db"))
	if err != nil {
		return errors.Wrap(err, "opening scratch database")
	}
	defer db.Close()

	if _, err := migrate.Run(db); err != nil {
		return errors.Wrap(err, "running migrations")
	}

	schema, err := dump(db)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(schema), 0644); err != nil {
		return errors.Wrap(err, "writing schema")
	}

	return nil
}

func main() {
	output := flag.String("output", "pkg/cli/database/schema.sql", "path of the generated schema")
	flag.Parse()

	tmpDir, err := os.MkdirTemp("", "foodlens-schema-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	if err := run(tmpDir, *output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}
}
