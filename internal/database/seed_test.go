// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package database

import (
	"context"
	"testing"
	"time"
)

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seeded, err := db.SeedDemoData(ctx, now)
	if err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}
	if !seeded {
		t.Fatal("SeedDemoData() = false on an empty database")
	}

	clients, err := db.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients() error = %v", err)
	}
	if len(clients) != len(demoClients) {
		t.Errorf("len(clients) = %d, want %d", len(clients), len(demoClients))
	}

	sales, err := db.ListSales(ctx)
	if err != nil {
		t.Fatalf("ListSales() error = %v", err)
	}
	wantSales := 0
	for i := 0; i < len(demoClients)-1; i++ {
		wantSales += demoProfiles[i%len(demoProfiles)].sales
	}
	if len(sales) != wantSales {
		t.Errorf("len(sales) = %d, want %d", len(sales), wantSales)
	}

	last := clients[len(clients)-1].ID
	for _, s := range sales {
		if s.ClientID == last {
			t.Errorf("client %d should have no purchase history", last)
		}
		if s.SoldAt.After(now) {
			t.Errorf("sale %d dated in the future: %v", s.ID, s.SoldAt)
		}
	}

	again, err := db.SeedDemoData(ctx, now)
	if err != nil {
		t.Fatalf("second SeedDemoData() error = %v", err)
	}
	if again {
		t.Error("second SeedDemoData() should be a no-op")
	}
}
