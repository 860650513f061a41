// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/shopsense/internal/logging"
	"github.com/tomtom215/shopsense/internal/models"
)

var demoProducts = []models.Product{
	{Name: "Espresso Beans 1kg", Description: "Dark roast, whole bean", Price: 24.90},
	{Name: "Oat Milk 1L", Description: "Barista edition", Price: 3.20},
	{Name: "Ceramic Cup", Description: "250ml, matte glaze", Price: 12.00},
	{Name: "Pour-over Kettle", Description: "Gooseneck, 1L", Price: 49.00},
	{Name: "Paper Filters x100", Description: "Size 02", Price: 5.50},
	{Name: "Hand Grinder", Description: "Conical burr", Price: 89.00},
	{Name: "Decaf Beans 500g", Description: "Swiss water process", Price: 14.50},
	{Name: "Gift Card", Description: "Store credit", Price: 25.00},
}

var demoClients = []models.Client{
	{Name: "Ana Souza", Email: "ana@example.com"},
	{Name: "Bruno Lima", Email: "bruno@example.com"},
	{Name: "Carla Mendes", Email: "carla@example.com"},
	{Name: "Diego Rocha", Email: "diego@example.com"},
	{Name: "Elisa Prado", Email: "elisa@example.com"},
	{Name: "Fabio Nunes", Email: "fabio@example.com"},
	{Name: "Gabriela Reis", Email: "gabriela@example.com"},
	{Name: "Heitor Alves", Email: "heitor@example.com"},
	{Name: "Isabela Costa", Email: "isabela@example.com"},
	{Name: "Joao Pereira"},
}

// demoProfile shapes the purchase history of a demo client so the data set
// contains recent big spenders, regulars and lapsed customers.
type demoProfile struct {
	sales      int
	maxDaysAgo int
	minDaysAgo int
	maxQty     int
}

var demoProfiles = []demoProfile{
	{sales: 14, minDaysAgo: 0, maxDaysAgo: 30, maxQty: 4},
	{sales: 6, minDaysAgo: 10, maxDaysAgo: 90, maxQty: 2},
	{sales: 2, minDaysAgo: 120, maxDaysAgo: 365, maxQty: 1},
}

// demoSeed fixes the generated data set.
const demoSeed = 20260301

// SeedDemoData fills an empty database with a deterministic demo data set
// whose sale dates are relative to now. It returns false without writing
// when sales already exist. The last demo client never buys anything, so
// the data set also exercises the "New" classification and the best-sellers
// fallback.
func (db *DB) SeedDemoData(ctx context.Context, now time.Time) (bool, error) {
	count, err := db.CountSales(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		logging.Info().Int64("sales", count).Msg("Sales already present, skipping demo seed")
		return false, nil
	}

	productIDs := make([]int, 0, len(demoProducts))
	for _, p := range demoProducts {
		id, err := db.InsertProduct(ctx, p)
		if err != nil {
			return false, fmt.Errorf("seed products: %w", err)
		}
		productIDs = append(productIDs, id)
	}

	clientIDs := make([]int, 0, len(demoClients))
	for _, c := range demoClients {
		id, err := db.InsertClient(ctx, c)
		if err != nil {
			return false, fmt.Errorf("seed clients: %w", err)
		}
		clientIDs = append(clientIDs, id)
	}

	rng := rand.New(rand.NewPCG(demoSeed, 0))
	recorded := 0
	for i, clientID := range clientIDs[:len(clientIDs)-1] {
		profile := demoProfiles[i%len(demoProfiles)]
		for n := 0; n < profile.sales; n++ {
			idx := rng.IntN(len(productIDs))
			qty := 1 + rng.IntN(profile.maxQty)
			daysAgo := profile.minDaysAgo + rng.IntN(profile.maxDaysAgo-profile.minDaysAgo+1)

			sale := models.Sale{
				ClientID:   clientID,
				ProductID:  productIDs[idx],
				Quantity:   qty,
				TotalValue: float64(qty) * demoProducts[idx].Price,
				SoldAt:     now.Add(-time.Duration(daysAgo)*24*time.Hour - time.Duration(rng.IntN(8))*time.Hour),
			}
			if _, err := db.RecordSale(ctx, sale); err != nil {
				return false, fmt.Errorf("seed sales: %w", err)
			}
			recorded++
		}
	}

	logging.Info().
		Int("products", len(productIDs)).
		Int("clients", len(clientIDs)).
		Int("sales", recorded).
		Msg("Seeded demo data")

	return true, nil
}
