// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package segment

import (
	"fmt"
)

// Config contains the clustering settings.
type Config struct {
	// Clusters is k.
	Clusters int

	// Seed makes training reproducible.
	Seed uint64

	// NInit is the number of k-means++ restarts; the lowest inertia wins.
	NInit int

	// MaxIterations bounds Lloyd iterations per restart.
	MaxIterations int

	// Tolerance is the convergence threshold relative to the mean feature
	// variance of the scaled data.
	Tolerance float64
}

// DefaultConfig returns the default clustering configuration.
func DefaultConfig() *Config {
	return &Config{
		Clusters:      3,
		Seed:          42,
		NInit:         10,
		MaxIterations: 300,
		Tolerance:     1e-4,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Clusters < 2 {
		return fmt.Errorf("clusters must be at least 2, got %d", c.Clusters)
	}
	if c.NInit < 1 {
		return fmt.Errorf("n_init must be at least 1, got %d", c.NInit)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	return nil
}
