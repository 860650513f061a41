// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package models

import "time"

// Sale is a single recorded sale of one product to one client.
//
// TotalValue is the amount actually charged for the line and is what the
// monetary RFM metric sums. It is not derived from Quantity * Product.Price,
// since prices change over time.
type Sale struct {
	ID         int       `json:"id"`
	ClientID   int       `json:"client_id"`
	ProductID  int       `json:"product_id"`
	Quantity   int       `json:"quantity"`
	TotalValue float64   `json:"total_value"`
	SoldAt     time.Time `json:"sold_at"`
}

// Product is a catalog entry.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// Client is a customer of the business.
type Client struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ProductSales is a product with its total quantity sold.
type ProductSales struct {
	Product
	QuantitySold int `json:"quantity_sold"`
}
