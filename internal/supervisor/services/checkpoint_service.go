// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package services

import (
	"context"
	"time"

	"github.com/tomtom215/shopsense/internal/logging"
)

// Checkpointer flushes the database write-ahead log. It is implemented by
// database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService checkpoints the sales store on a fixed interval. A
// failed checkpoint is logged and retried on the next tick; it does not
// fail the service.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
}

// NewCheckpointService creates the service. interval must be positive.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	return &CheckpointService{db: db, interval: interval}
}

// Serve implements suture.Service.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.db.Checkpoint(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Warn().Err(err).Msg("Database checkpoint failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Database checkpoint completed")
		}
	}
}

// String identifies the service in supervisor logs.
func (s *CheckpointService) String() string {
	return "db-checkpoint"
}
