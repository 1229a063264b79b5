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

// Package reconcile merges rows pulled from the remote into the local store
package reconcile

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/utils/diff"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/pkg/errors"
)

// Schema describes how remote rows map onto a user-scoped table. Every table
// has user_id, created_at, updated_at, dirty and deleted columns in addition
// to the ones listed here.
type Schema struct {
	Table string
	// KeyColumns identify a row within the rows of a user
	KeyColumns []string
	// Columns are the mutable columns, overwritten when the remote row wins
	Columns []string
}

// Row is a remote row. Key and Values are ordered as Schema.KeyColumns and
// Schema.Columns.
type Row struct {
	Key       []interface{}
	Values    []interface{}
	CreatedAt string
	UpdatedAt string
	Deleted   bool
}

// Stats counts the outcome of an Apply
type Stats struct {
	Inserted int
	Updated  int
	Deleted  int
	Skipped  int
}

// Total returns the number of rows considered
func (s Stats) Total() int {
	return s.Inserted + s.Updated + s.Deleted + s.Skipped
}

func (s Schema) where() string {
	conds := []string{"user_id = ?"}
	for _, c := range s.KeyColumns {
		conds = append(conds, fmt.Sprintf("%s = ?", c))
	}

	return strings.Join(conds, " AND ")
}

func (s Schema) keyArgs(userID string, r Row) []interface{} {
	return append([]interface{}{userID}, r.Key...)
}

func (s Schema) validate(r Row) error {
	if len(r.Key) != len(s.KeyColumns) {
		return errors.Errorf("row has %d key values, %s expects %d", len(r.Key), s.Table, len(s.KeyColumns))
	}
	if !r.Deleted && len(r.Values) != len(s.Columns) {
		return errors.Errorf("row has %d values, %s expects %d", len(r.Values), s.Table, len(s.Columns))
	}

	return nil
}

type localRow struct {
	updatedAt string
	dirty     bool
	values    []interface{}
}

func getLocal(tx *database.DB, userID string, s Schema, r Row) (*localRow, error) {
	query := fmt.Sprintf("SELECT updated_at, dirty, %s FROM %s WHERE %s",
		strings.Join(s.Columns, ", "), s.Table, s.where())

	ret := localRow{values: make([]interface{}, len(s.Columns))}
	dest := []interface{}{&ret.updatedAt, &ret.dirty}
	for i := range ret.values {
		dest = append(dest, &ret.values[i])
	}

	err := tx.QueryRow(query, s.keyArgs(userID, r)...).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "querying the local row")
	}

	return &ret, nil
}

func deleteRow(tx *database.DB, userID string, s Schema, r Row) (bool, error) {
	res, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s", s.Table, s.where()), s.keyArgs(userID, r)...)
	if err != nil {
		return false, errors.Wrap(err, "deleting the local row")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "counting deleted rows")
	}

	return n > 0, nil
}

func insertRow(tx *database.DB, userID string, s Schema, r Row) error {
	cols := append([]string{"user_id"}, s.KeyColumns...)
	cols = append(cols, s.Columns...)
	cols = append(cols, "created_at", "updated_at", "dirty", "deleted")

	createdAt := r.CreatedAt
	if createdAt == "" {
		createdAt = r.UpdatedAt
	}

	args := s.keyArgs(userID, r)
	args = append(args, r.Values...)
	args = append(args, createdAt, r.UpdatedAt, false, false)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Table, strings.Join(cols, ", "), database.Placeholders(len(cols)))
	if _, err := tx.Exec(query, args...); err != nil {
		return errors.Wrap(err, "inserting the remote row")
	}

	return nil
}

func updateRow(tx *database.DB, userID string, s Schema, r Row) error {
	sets := []string{}
	for _, c := range s.Columns {
		sets = append(sets, fmt.Sprintf("%s = ?", c))
	}
	sets = append(sets, "updated_at = ?", "dirty = 0", "deleted = 0")

	args := append([]interface{}{}, r.Values...)
	args = append(args, r.UpdatedAt)
	args = append(args, s.keyArgs(userID, r)...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.Table, strings.Join(sets, ", "), s.where())
	if _, err := tx.Exec(query, args...); err != nil {
		return errors.Wrap(err, "updating the local row")
	}

	return nil
}

// localNewer reports whether an unpushed local edit is strictly newer than
// the remote row
func localNewer(local *localRow, r Row) bool {
	return local.dirty && clock.CompareISO(local.updatedAt, r.UpdatedAt) > 0
}

func render(cols []string, updatedAt string, values []interface{}) string {
	var sb strings.Builder
	for i, c := range cols {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		fmt.Fprintf(&sb, "%s=%v\n", c, v)
	}
	fmt.Fprintf(&sb, "updated_at=%s\n", updatedAt)

	return sb.String()
}

func logSkip(s Schema, r Row, local *localRow) {
	log.Debug("keeping local %s row %v, unpushed edit at %s is newer than %s\n", s.Table, r.Key, local.updatedAt, r.UpdatedAt)
	log.Debug("%s", diff.Lines(render(s.Columns, local.updatedAt, local.values), render(s.Columns, r.UpdatedAt, r.Values)))
}

func applyRow(tx *database.DB, userID string, s Schema, r Row, stats *Stats) error {
	if r.Deleted {
		ok, err := deleteRow(tx, userID, s, r)
		if err != nil {
			return err
		}
		if ok {
			stats.Deleted++
		}

		return nil
	}

	local, err := getLocal(tx, userID, s, r)
	if err != nil {
		return err
	}

	if local == nil {
		if err := insertRow(tx, userID, s, r); err != nil {
			return err
		}
		stats.Inserted++

		return nil
	}

	if localNewer(local, r) {
		logSkip(s, r, local)
		stats.Skipped++

		return nil
	}

	if err := updateRow(tx, userID, s, r); err != nil {
		return err
	}
	stats.Updated++

	return nil
}

// Apply merges the remote rows into the table of the schema, one row at a
// time and in order, within a single transaction. A remote deletion always
// removes the local row. Otherwise the remote row is inserted when absent, and
// overwrites the local row unless the local row is dirty and strictly newer.
func Apply(db *database.DB, userID string, rows []Row, schema Schema) (Stats, error) {
	var stats Stats

	if err := database.RequireUser(userID); err != nil {
		return stats, err
	}
	if len(rows) == 0 {
		return stats, nil
	}

	err := database.WithTx(db, func(tx *database.DB) error {
		for i, r := range rows {
			if err := schema.validate(r); err != nil {
				return errors.Wrapf(err, "validating row %d", i)
			}
			if err := applyRow(tx, userID, schema, r, &stats); err != nil {
				return errors.Wrapf(err, "applying %s row %v", schema.Table, r.Key)
			}
		}

		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}
