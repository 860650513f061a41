// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates sequences and the core tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS clients_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS products_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS sales_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS clients (
			id INTEGER PRIMARY KEY DEFAULT nextval('clients_id_seq'),
			name TEXT NOT NULL,
			email TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY DEFAULT nextval('products_id_seq'),
			name TEXT NOT NULL,
			description TEXT,
			price DOUBLE NOT NULL DEFAULT 0
		)`,

		// total_value is what was charged, not quantity * current price.
		`CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY DEFAULT nextval('sales_id_seq'),
			client_id INTEGER NOT NULL REFERENCES clients(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			total_value DOUBLE NOT NULL CHECK (total_value >= 0),
			sold_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates lookup indexes on the sales table
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_sales_client_id ON sales(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product_id ON sales(product_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
