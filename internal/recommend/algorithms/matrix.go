// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package algorithms

import (
	"sort"

	"github.com/tomtom215/shopsense/internal/models"
)

// PurchaseMatrix is a binary client-by-product incidence matrix.
//
// Rows are the distinct clients with at least one sale in ascending client
// id; columns are the distinct products with at least one sale in ascending
// product id. A cell is true when the client ever bought the product.
type PurchaseMatrix struct {
	clientIDs  []int
	productIDs []int
	rows       [][]bool

	clientIndex  map[int]int
	productIndex map[int]int
}

// BuildPurchaseMatrix builds the incidence matrix from the given sales.
// It returns nil when there are no sales.
func BuildPurchaseMatrix(sales []models.Sale) *PurchaseMatrix {
	if len(sales) == 0 {
		return nil
	}

	clientSet := make(map[int]struct{})
	productSet := make(map[int]struct{})
	for i := range sales {
		clientSet[sales[i].ClientID] = struct{}{}
		productSet[sales[i].ProductID] = struct{}{}
	}

	m := &PurchaseMatrix{
		clientIDs:  sortedKeys(clientSet),
		productIDs: sortedKeys(productSet),
	}
	m.clientIndex = indexOf(m.clientIDs)
	m.productIndex = indexOf(m.productIDs)

	m.rows = make([][]bool, len(m.clientIDs))
	for i := range m.rows {
		m.rows[i] = make([]bool, len(m.productIDs))
	}
	for i := range sales {
		m.rows[m.clientIndex[sales[i].ClientID]][m.productIndex[sales[i].ProductID]] = true
	}

	return m
}

// ClientIDs returns the row clients in ascending id order.
func (m *PurchaseMatrix) ClientIDs() []int {
	return append([]int(nil), m.clientIDs...)
}

// ProductIDs returns the column products in ascending id order.
func (m *PurchaseMatrix) ProductIDs() []int {
	return append([]int(nil), m.productIDs...)
}

// HasClient reports whether the client has a row (at least one sale).
func (m *PurchaseMatrix) HasClient(clientID int) bool {
	_, ok := m.clientIndex[clientID]
	return ok
}

// Purchased reports whether the client ever bought the product. Unknown
// clients or products report false.
func (m *PurchaseMatrix) Purchased(clientID, productID int) bool {
	ci, ok := m.clientIndex[clientID]
	if !ok {
		return false
	}
	pi, ok := m.productIndex[productID]
	if !ok {
		return false
	}
	return m.rows[ci][pi]
}

// Candidates returns the products the neighbor bought and the target did
// not, in ascending product id order.
func (m *PurchaseMatrix) Candidates(targetID, neighborID int) []int {
	ti, ok := m.clientIndex[targetID]
	if !ok {
		return nil
	}
	ni, ok := m.clientIndex[neighborID]
	if !ok {
		return nil
	}

	var out []int
	for col, productID := range m.productIDs {
		if m.rows[ni][col] && !m.rows[ti][col] {
			out = append(out, productID)
		}
	}
	return out
}

// vector returns the row of the client at index i as a float vector.
func (m *PurchaseMatrix) vector(i int) []float64 {
	v := make([]float64, len(m.productIDs))
	for col, bought := range m.rows[i] {
		if bought {
			v[col] = 1
		}
	}
	return v
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func indexOf(ids []int) map[int]int {
	index := make(map[int]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}
