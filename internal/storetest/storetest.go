// Package storetest provides an in-process SQLite database with the farmdesk
// schema, for tests of the store and of the packages built on it.
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Password is the clear-text password of every farmer created by Farmer.
const Password = "Secret1"

// schema mirrors internal/db/migrations in the SQLite dialect.
const schema = `
CREATE TABLE farmers (
    farmer_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    full_name     TEXT      NOT NULL,
    address       TEXT      NOT NULL DEFAULT '',
    phone         TEXT      NOT NULL DEFAULT '',
    login         TEXT      NOT NULL UNIQUE,
    password_hash TEXT      NOT NULL,
    email         TEXT      NOT NULL DEFAULT '',
    registered_at TIMESTAMP NOT NULL,
    role          TEXT      NOT NULL DEFAULT 'farmer'
        CHECK (role IN ('admin', 'farmer'))
);

CREATE TABLE products (
    product_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    farmer_id       INTEGER NOT NULL REFERENCES farmers (farmer_id) ON DELETE CASCADE,
    product_name    TEXT    NOT NULL,
    quantity        NUMERIC NOT NULL DEFAULT 0,
    quality_grade   TEXT    NOT NULL DEFAULT '',
    unit_price      NUMERIC NOT NULL DEFAULT 0,
    production_cost NUMERIC NOT NULL DEFAULT 0,
    production_date DATE    NOT NULL,
    sold_quantity   NUMERIC NOT NULL DEFAULT 0
);

CREATE TABLE needs (
    need_id           INTEGER PRIMARY KEY AUTOINCREMENT,
    farmer_id         INTEGER NOT NULL REFERENCES farmers (farmer_id) ON DELETE CASCADE,
    need_name         TEXT    NOT NULL,
    need_type         TEXT    NOT NULL DEFAULT 'good'
        CHECK (need_type IN ('good', 'service')),
    unit_price        NUMERIC NOT NULL DEFAULT 0,
    required_quantity NUMERIC NOT NULL DEFAULT 0,
    status            TEXT    NOT NULL DEFAULT 'required'
        CHECK (status IN ('required', 'purchased', 'in-progress')),
    purchase_date     DATE,
    notes             TEXT    NOT NULL DEFAULT ''
);
`

// Open creates a fresh database in a temporary directory. It is closed when
// the test finishes.
func Open(tb testing.TB) *sqlx.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "farmdesk.db")
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(schema); err != nil {
		tb.Fatalf("create schema: %v", err)
	}
	return db
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Farmer inserts a farmer with the given login and role. The password is
// always Password.
func Farmer(tb testing.TB, db *sqlx.DB, login string, role types.Role) types.Farmer {
	tb.Helper()

	farmer, err := store.NewFarmerRepository(db).Create(context.Background(), types.Farmer{
		FullName:     "Farmer " + login,
		Address:      "Region of " + login,
		Phone:        "+10000000",
		Login:        login,
		PasswordHash: store.HashPassword(Password),
		Email:        login + "@example.com",
		Role:         role,
	})
	if err != nil {
		tb.Fatalf("create farmer %q: %v", login, err)
	}
	return farmer
}

// Product inserts a product. quantity, price and cost are decimal literals.
func Product(tb testing.TB, db *sqlx.DB, farmerID int, name, quantity, price, cost string, date time.Time) types.Product {
	tb.Helper()

	product, err := store.NewProductRepository(db).Create(context.Background(), types.Product{
		FarmerID:       farmerID,
		Name:           name,
		Quantity:       Dec(quantity),
		QualityGrade:   "A",
		UnitPrice:      Dec(price),
		ProductionCost: Dec(cost),
		ProductionDate: date,
		SoldQuantity:   decimal.Zero,
	})
	if err != nil {
		tb.Fatalf("create product %q: %v", name, err)
	}
	return product
}

// Need inserts a good with the given status. price and quantity are decimal
// literals.
func Need(tb testing.TB, db *sqlx.DB, farmerID int, name, price, quantity string, status types.NeedStatus) types.Need {
	tb.Helper()

	need, err := store.NewNeedRepository(db).Create(context.Background(), types.Need{
		FarmerID:         farmerID,
		Name:             name,
		Type:             types.NeedTypeGood,
		UnitPrice:        Dec(price),
		RequiredQuantity: Dec(quantity),
		Status:           status,
	})
	if err != nil {
		tb.Fatalf("create need %q: %v", name, err)
	}
	return need
}
