// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/shopsense/internal/metrics"
	"github.com/tomtom215/shopsense/internal/models"
)

const salesColumns = `id, client_id, product_id, quantity, total_value, sold_at`

// ListSales returns every sale ordered by id.
func (db *DB) ListSales(ctx context.Context) ([]models.Sale, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT `+salesColumns+` FROM sales ORDER BY id`)
	metrics.RecordDBQuery("list_sales", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer closeWithLog(rows, "rows")

	return scanSales(rows)
}

// ListSalesForClient returns the sales of one client ordered by id. An
// unknown client yields an empty slice.
func (db *DB) ListSalesForClient(ctx context.Context, clientID int) ([]models.Sale, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+salesColumns+` FROM sales WHERE client_id = ? ORDER BY id`, clientID)
	metrics.RecordDBQuery("list_client_sales", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query sales for client %d: %w", clientID, err)
	}
	defer closeWithLog(rows, "rows")

	return scanSales(rows)
}

func scanSales(rows *sql.Rows) ([]models.Sale, error) {
	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.ClientID, &s.ProductID, &s.Quantity, &s.TotalValue, &s.SoldAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s.SoldAt = s.SoldAt.UTC()
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

// CountSales returns the number of recorded sales.
func (db *DB) CountSales(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// TopProducts returns at most n products by descending total quantity sold,
// ties broken by ascending product id. Products never sold are omitted.
func (db *DB) TopProducts(ctx context.Context, n int) ([]models.ProductSales, error) {
	if n <= 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT p.id, p.name, COALESCE(p.description, ''), p.price,
			CAST(SUM(s.quantity) AS BIGINT) AS qty
		FROM sales s
		JOIN products p ON p.id = s.product_id
		GROUP BY p.id, p.name, p.description, p.price
		ORDER BY qty DESC, p.id ASC
		LIMIT ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, n)
	metrics.RecordDBQuery("top_products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var top []models.ProductSales
	for rows.Next() {
		var ps models.ProductSales
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.Description, &ps.Price, &ps.QuantitySold); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		top = append(top, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products: %w", err)
	}
	return top, nil
}

// ProductsByIDs returns the products with the given ids in ascending id
// order. Ids with no matching product are skipped.
func (db *DB) ProductsByIDs(ctx context.Context, ids []int) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT id, name, COALESCE(description, ''), price FROM products
		WHERE id IN (` + placeholders + `) ORDER BY id`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("products_by_ids", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	return scanProducts(rows)
}

// ListProducts returns the whole catalog ordered by id.
func (db *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), price FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// ListClients returns every client ordered by id.
func (db *DB) ListClients(ctx context.Context) ([]models.Client, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, COALESCE(email, '') FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

// InsertClient stores a client and returns its id. A zero ID draws the next
// value from the clients sequence; callers should not mix the two styles.
func (db *DB) InsertClient(ctx context.Context, c models.Client) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int
	var err error
	if c.ID > 0 {
		err = db.conn.QueryRowContext(ctx,
			`INSERT INTO clients (id, name, email) VALUES (?, ?, ?) RETURNING id`,
			c.ID, c.Name, nullIfEmpty(c.Email)).Scan(&id)
	} else {
		err = db.conn.QueryRowContext(ctx,
			`INSERT INTO clients (name, email) VALUES (?, ?) RETURNING id`,
			c.Name, nullIfEmpty(c.Email)).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert client %q: %w", c.Name, err)
	}
	return id, nil
}

// InsertProduct stores a product and returns its id. See InsertClient for ID handling.
func (db *DB) InsertProduct(ctx context.Context, p models.Product) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int
	var err error
	if p.ID > 0 {
		err = db.conn.QueryRowContext(ctx,
			`INSERT INTO products (id, name, description, price) VALUES (?, ?, ?, ?) RETURNING id`,
			p.ID, p.Name, nullIfEmpty(p.Description), p.Price).Scan(&id)
	} else {
		err = db.conn.QueryRowContext(ctx,
			`INSERT INTO products (name, description, price) VALUES (?, ?, ?) RETURNING id`,
			p.Name, nullIfEmpty(p.Description), p.Price).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert product %q: %w", p.Name, err)
	}
	return id, nil
}

// RecordSale stores a sale and returns its id. The ID field of s is ignored.
func (db *DB) RecordSale(ctx context.Context, s models.Sale) (int, error) {
	if s.Quantity <= 0 || s.TotalValue < 0 {
		return 0, fmt.Errorf("%w: quantity %d, total %.2f", ErrInvalidSale, s.Quantity, s.TotalValue)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO sales (client_id, product_id, quantity, total_value, sold_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		s.ClientID, s.ProductID, s.Quantity, s.TotalValue, s.SoldAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("record sale for client %d: %w", s.ClientID, err)
	}
	return id, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
