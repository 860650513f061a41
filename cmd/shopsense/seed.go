// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with demo clients, products and sales",
		Long: `Inserts a deterministic demo data set with sale dates relative to today.
Does nothing when the database already holds sales.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			seeded, err := a.db.SeedDemoData(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			if !seeded {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Database already contains sales, nothing seeded")
				return err
			}

			count, err := a.db.CountSales(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d demo sales into %s\n", count, a.db.Path())
			return err
		},
	}
}
