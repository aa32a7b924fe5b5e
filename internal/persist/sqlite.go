package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products (
	position       INTEGER NOT NULL,
	product_number INTEGER PRIMARY KEY,
	product_name   TEXT NOT NULL,
	product_owner  TEXT NOT NULL,
	developers     TEXT NOT NULL,
	scrum_master   TEXT NOT NULL,
	start_date     TEXT,
	methodology    TEXT NOT NULL
);`

// ErrNoDatabase is returned by OpenSQLite when the file is absent and
// creation was not requested.
var ErrNoDatabase = errors.New("database file does not exist")

// SQLite stores one row per product in an embedded database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens the database at path. Unless create is set the file must
// already exist.
func OpenSQLite(path string, create bool) (*SQLite, error) {
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoDatabase, path)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

// Exists reports whether any product rows are stored.
func (s *SQLite) Exists() bool {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// Load reads all products in stored order.
func (s *SQLite) Load(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_number, product_name, product_owner, developers,
		       scrum_master, start_date, methodology
		FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p         model.Product
			devs      string
			startDate sql.NullString
			meth      string
		)
		if err := rows.Scan(&p.ProductNumber, &p.ProductName, &p.ProductOwner, &devs, &p.ScrumMaster, &startDate, &meth); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(devs), &p.Developers); err != nil {
			return nil, fmt.Errorf("product %d developers: %w", p.ProductNumber, err)
		}
		if startDate.Valid && startDate.String != "" {
			d, err := model.ParseDate(startDate.String)
			if err != nil {
				return nil, fmt.Errorf("product %d start date: %w", p.ProductNumber, err)
			}
			p.StartDate = d
		}
		p.Methodology = model.Methodology(meth)
		products = append(products, p)
	}
	return products, rows.Err()
}

// Persist replaces the table contents with products in one transaction.
func (s *SQLite) Persist(ctx context.Context, products []model.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (position, product_number, product_name, product_owner,
			developers, scrum_master, start_date, methodology)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range products {
		devs := p.Developers
		if devs == nil {
			devs = []string{}
		}
		devsJSON, err := json.Marshal(devs)
		if err != nil {
			return fmt.Errorf("encode developers: %w", err)
		}
		var startDate sql.NullString
		if !p.StartDate.IsZero() {
			startDate = sql.NullString{String: p.StartDate.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, p.ProductNumber, p.ProductName, p.ProductOwner,
			string(devsJSON), p.ScrumMaster, startDate, string(p.Methodology)); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ProductNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
