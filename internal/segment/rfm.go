// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/shopsense/internal/models"
)

// RFM holds the recency, frequency and monetary features of one client.
type RFM struct {
	ClientID int `json:"client_id"`

	// Recency is whole days since the most recent sale.
	Recency int `json:"recency"`

	// Frequency is the number of sale rows.
	Frequency int `json:"frequency"`

	// Monetary is the sum of sale totals.
	Monetary float64 `json:"monetary"`
}

// Features returns the feature vector in recency, frequency, monetary order.
func (r RFM) Features() []float64 {
	return []float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
}

// Feature indexes.
const (
	featureRecency = iota
	featureFrequency
	featureMonetary
	numFeatures
)

// Extractor computes RFM features from the sales store.
type Extractor struct {
	source SalesSource
	now    Clock
}

// NewExtractor creates an extractor. A nil clock uses time.Now.
func NewExtractor(source SalesSource, clock Clock) *Extractor {
	if clock == nil {
		clock = time.Now
	}
	return &Extractor{source: source, now: clock}
}

// ComputeCohort returns the RFM features of every client with sales in
// ascending client id order, or ErrNoData when there are no sales.
func (e *Extractor) ComputeCohort(ctx context.Context) ([]RFM, error) {
	sales, err := e.source.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(sales) == 0 {
		return nil, ErrNoData
	}
	return aggregateRFM(sales, e.now()), nil
}

// ComputeClient returns the RFM features of one client, or ErrNoData when
// the client has no sales. Unknown clients are treated the same way.
func (e *Extractor) ComputeClient(ctx context.Context, clientID int) (RFM, error) {
	sales, err := e.source.ListSalesForClient(ctx, clientID)
	if err != nil {
		return RFM{}, fmt.Errorf("list sales for client %d: %w", clientID, err)
	}

	var own []models.Sale
	for i := range sales {
		if sales[i].ClientID == clientID {
			own = append(own, sales[i])
		}
	}
	if len(own) == 0 {
		return RFM{}, fmt.Errorf("client %d: %w", clientID, ErrNoData)
	}
	return aggregateRFM(own, e.now())[0], nil
}

// aggregateRFM groups sales by client. Sales dated after now count as
// recency 0.
func aggregateRFM(sales []models.Sale, now time.Time) []RFM {
	type acc struct {
		last     time.Time
		count    int
		monetary float64
	}
	byClient := make(map[int]*acc)
	for i := range sales {
		s := &sales[i]
		a, ok := byClient[s.ClientID]
		if !ok {
			a = &acc{last: s.SoldAt}
			byClient[s.ClientID] = a
		}
		if s.SoldAt.After(a.last) {
			a.last = s.SoldAt
		}
		a.count++
		a.monetary += s.TotalValue
	}

	out := make([]RFM, 0, len(byClient))
	for clientID, a := range byClient {
		out = append(out, RFM{
			ClientID:  clientID,
			Recency:   daysSince(now, a.last),
			Frequency: a.count,
			Monetary:  a.monetary,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

func daysSince(now, then time.Time) int {
	d := now.Sub(then)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
