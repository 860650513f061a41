// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/shopsense/internal/models"
)

// fakeSource is an in-memory ClientSource.
type fakeSource struct {
	mu      sync.Mutex
	sales   []models.Sale
	clients []models.Client
	err     error
}

func (f *fakeSource) ListSales(_ context.Context) ([]models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Sale(nil), f.sales...), nil
}

func (f *fakeSource) ListSalesForClient(_ context.Context, clientID int) ([]models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Sale
	for _, s := range f.sales {
		if s.ClientID == clientID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) ListClients(_ context.Context) ([]models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Client(nil), f.clients...), nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var refNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return refNow }

// addSales records n sales of value each, one day apart, the latest
// lastDaysAgo days before refNow.
func (f *fakeSource) addSales(clientID, n, lastDaysAgo int, value float64) {
	for i := 0; i < n; i++ {
		f.sales = append(f.sales, models.Sale{
			ID:         len(f.sales) + 1,
			ClientID:   clientID,
			ProductID:  1 + i%3,
			Quantity:   1,
			TotalValue: value,
			SoldAt:     refNow.Add(-time.Duration(lastDaysAgo+i) * 24 * time.Hour),
		})
	}
}

// segmentedCohort returns three well separated groups of clients:
// 1-3 rarely buy and stopped long ago, 4-6 buy regularly, 7-9 buy often and
// spend the most. Client 10 has no sales.
func segmentedCohort() *fakeSource {
	f := &fakeSource{}
	for id := 1; id <= 10; id++ {
		f.clients = append(f.clients, models.Client{ID: id, Name: "Client"})
	}
	f.addSales(1, 1, 300, 10)
	f.addSales(2, 1, 310, 12)
	f.addSales(3, 1, 320, 8)
	f.addSales(4, 5, 30, 40)
	f.addSales(5, 5, 35, 40)
	f.addSales(6, 5, 40, 40)
	f.addSales(7, 15, 2, 130)
	f.addSales(8, 15, 3, 130)
	f.addSales(9, 15, 4, 130)
	return f
}
