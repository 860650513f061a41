// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/shopsense/internal/models"
)

var (
	// ErrNoData is returned when there are no sales to derive RFM features from.
	ErrNoData = errors.New("no sales data")

	// ErrTrainingPrecondition is returned when the cohort is too small to
	// train. Nothing is written when it occurs.
	ErrTrainingPrecondition = errors.New("training precondition failed")
)

// SalesSource is the read-only view of the sales store RFM extraction needs.
type SalesSource interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
	ListSalesForClient(ctx context.Context, clientID int) ([]models.Sale, error)
}

// ClientSource adds the client listing used by Classifier.ClassifyClients.
type ClientSource interface {
	SalesSource
	ListClients(ctx context.Context) ([]models.Client, error)
}

// Clock returns the reference instant for recency.
type Clock func() time.Time

// Segment is a named, colored customer group.
type Segment struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Known segments.
var (
	SegmentAtRisk    = Segment{Name: "At Risk", Color: "#dc3545"}
	SegmentLoyal     = Segment{Name: "Loyal", Color: "#198754"}
	SegmentHighValue = Segment{Name: "High Value", Color: "#0d6efd"}
	SegmentNew       = Segment{Name: "New", Color: "#6c757d"}
	SegmentUndefined = Segment{Name: "Undefined", Color: "#6c757d"}
)

// Status tells which case of Classification applies.
type Status string

const (
	// StatusClassified means the client was assigned to a trained cluster.
	StatusClassified Status = "classified"

	// StatusNew means the client has no purchase history.
	StatusNew Status = "new"

	// StatusUnavailable means no usable model is loaded.
	StatusUnavailable Status = "unavailable"
)

// Classification is the outcome of classifying one client. Cluster is -1
// unless Status is StatusClassified.
type Classification struct {
	ClientID int     `json:"client_id"`
	Status   Status  `json:"status"`
	Segment  Segment `json:"segment"`
	Cluster  int     `json:"cluster"`
}

func unavailable(clientID int) Classification {
	return Classification{ClientID: clientID, Status: StatusUnavailable, Segment: SegmentUndefined, Cluster: -1}
}

func newClient(clientID int) Classification {
	return Classification{ClientID: clientID, Status: StatusNew, Segment: SegmentNew, Cluster: -1}
}

// ClientSegment pairs a client record with its classification.
type ClientSegment struct {
	Client         models.Client  `json:"client"`
	Classification Classification `json:"classification"`
}
