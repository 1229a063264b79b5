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

// Package database provides the connection to the local SQLite store and the
// row-oriented primitives the repositories are built on.
package database

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB contains information about the current database connection.
// If Tx is set, statements run inside that transaction.
type DB struct {
	Conn *sql.DB
	Tx   *sql.Tx
}

// Open opens the SQLite database at the given path
func Open(p string) (*DB, error) {
	db, err := sql.Open("sqlite3", p)
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}

	// Some options are connection-scoped; only file databases use WAL.
	if !strings.Contains(p, "mode=memory") {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			return nil, errors.Wrap(err, "enabling WAL")
		}
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, errors.Wrap(err, "setting busy timeout")
	}

	return &DB{Conn: db}, nil
}

// Begin begins a transaction
func (d *DB) Begin() (*DB, error) {
	if d.Tx != nil {
		return nil, errors.New("transaction already in progress")
	}

	tx, err := d.Conn.Begin()
	if err != nil {
		return nil, err
	}

	return &DB{
		Conn: d.Conn,
		Tx:   tx,
	}, nil
}

// Commit commits a transaction
func (d *DB) Commit() error {
	if d.Tx == nil {
		return errors.New("not in a transaction")
	}

	return d.Tx.Commit()
}

// Rollback rolls back a transaction. It is a no-op outside a transaction.
func (d *DB) Rollback() error {
	if d.Tx == nil {
		return nil
	}

	return d.Tx.Rollback()
}

// Exec executes a sql statement and returns the row count and insert id in the result
func (d *DB) Exec(query string, values ...interface{}) (sql.Result, error) {
	if d.Tx != nil {
		return d.Tx.Exec(query, values...)
	}

	return d.Conn.Exec(query, values...)
}

// Query queries rows
func (d *DB) Query(query string, values ...interface{}) (*sql.Rows, error) {
	if d.Tx != nil {
		return d.Tx.Query(query, values...)
	}

	return d.Conn.Query(query, values...)
}

// QueryRow queries a single row. Absence is reported as sql.ErrNoRows by Scan.
func (d *DB) QueryRow(query string, values ...interface{}) *sql.Row {
	if d.Tx != nil {
		return d.Tx.QueryRow(query, values...)
	}

	return d.Conn.QueryRow(query, values...)
}

// Close closes a db connection
func (d *DB) Close() error {
	return d.Conn.Close()
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error. If db is already a transaction, fn joins it.
func WithTx(db *DB, fn func(tx *DB) error) error {
	if db.Tx != nil {
		return fn(db)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// Placeholders returns n comma-separated bind parameters, e.g. "?,?,?"
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}

	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// NullString maps an empty string to SQL NULL
func NullString(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}
