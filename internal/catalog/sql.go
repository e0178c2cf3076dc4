/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	applog "pricecards/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// selectCatalog reads categories and their items in display order. Item columns are
// coalesced so that an empty category yields a single row with an empty name.
const selectCatalog = `SELECT c.id, c.title, COALESCE(i.name, ''), COALESCE(i.description, ''), COALESCE(i.price, ''), COALESCE(i.badge, '')
FROM categories c
LEFT JOIN items i ON i.category_id = c.id
ORDER BY c.position, c.id, i.position, i.id`

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id       INTEGER PRIMARY KEY,
		title    TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS items (
		id          INTEGER PRIMARY KEY,
		category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL DEFAULT 0,
		name        TEXT NOT NULL,
		description TEXT,
		price       TEXT NOT NULL,
		badge       TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id, position);`,
}

// rowScanner is the subset shared by *sql.Rows and pgx.Rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectCategories(rows rowScanner) ([]Category, error) {
	var out []Category
	lastID := int64(-1)
	for rows.Next() {
		var (
			id                              int64
			title, name, desc, price, badge string
		)
		if err := rows.Scan(&id, &title, &name, &desc, &price, &badge); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		if id != lastID {
			out = append(out, Category{Title: strings.TrimSpace(title)})
			lastID = id
		}
		if name == "" {
			continue
		}
		b, err := ParseBadge(badge)
		if err != nil {
			return nil, fmt.Errorf("%s: item %q: %w", title, name, err)
		}
		cur := &out[len(out)-1]
		cur.Items = append(cur.Items, Item{Name: name, Description: desc, Price: price, Badge: b})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	for _, c := range out {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// OpenSQLite opens (creating if needed) a local catalog snapshot and ensures its schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, q := range sqliteDDL {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			l.Error("ensure schema failed", slog.Any("err", err))
			return nil, fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	l.Debug("snapshot ready")
	return db, nil
}

// WriteSnapshot replaces the contents of a SQLite snapshot with the given categories.
func WriteSnapshot(ctx context.Context, db *sql.DB, categories []Category) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM categories"); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for ci, c := range categories {
		res, err := tx.ExecContext(ctx, "INSERT INTO categories (title, position) VALUES (?, ?)", c.Title, ci)
		if err != nil {
			return fmt.Errorf("insert category %q: %w", c.Title, err)
		}
		catID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("category id: %w", err)
		}
		for ii, it := range c.Items {
			var desc, badge any
			if it.HasDescription() {
				desc = it.Description
			}
			if it.Badge != BadgeNone {
				badge = string(it.Badge)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO items (category_id, position, name, description, price, badge) VALUES (?, ?, ?, ?, ?, ?)",
				catID, ii, it.Name, desc, it.Price, badge); err != nil {
				return fmt.Errorf("insert item %q: %w", it.Name, err)
			}
		}
	}
	return tx.Commit()
}

// SQLiteSource reads categories from a local snapshot.
type SQLiteSource struct{ DB *sql.DB }

func (s SQLiteSource) Categories(ctx context.Context) ([]Category, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite source has no database")
	}
	rows, err := s.DB.QueryContext(ctx, selectCatalog)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectCategories(rows)
}

// PgQuerier abstracts *pgxpool.Pool so the source can be exercised with pgxmock.
type PgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads categories from the hosted backend database.
type PostgresSource struct{ Pool PgQuerier }

// ConnectPostgres opens a pgx pool for the given DSN and verifies connectivity.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (s PostgresSource) Categories(ctx context.Context) ([]Category, error) {
	if s.Pool == nil {
		return nil, errors.New("postgres source has no pool")
	}
	rows, err := s.Pool.Query(ctx, selectCatalog)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}
