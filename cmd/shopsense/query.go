// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shopsense/internal/logging"
	"github.com/tomtom215/shopsense/internal/models"
	"github.com/tomtom215/shopsense/internal/recommend"
	"github.com/tomtom215/shopsense/internal/segment"
	"github.com/tomtom215/shopsense/internal/segment/storage"
)

// parseClientArg parses a positive client id.
func parseClientArg(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id %q: must be a positive integer", arg)
	}
	return id, nil
}

func newRecommendCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recommend <client-id>",
		Short: "Recommend products for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseClientArg(args[0])
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			engine, err := a.engine()
			if err != nil {
				return err
			}
			rec, err := engine.RecommendForClient(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			return printRecommendation(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newBestSellersCmd() *cobra.Command {
	var (
		asJSON bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "best-sellers",
		Short: "List products by total quantity sold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid limit %d: must not be negative", limit)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			engine, err := a.engine()
			if err != nil {
				return err
			}
			products, err := engine.BestSellers(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), products)
			}
			return printProducts(cmd.OutOrStdout(), products)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of products (0 uses the configured list size)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var (
		asJSON bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "classify [client-id]",
		Short: "Show the customer segment of a client, or of every client with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var clientID int
			if !all {
				id, err := parseClientArg(args[0])
				if err != nil {
					return err
				}
				clientID = id
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			classifier := segment.LoadClassifier(ctx, storage.OpenStore(a.cfg.Segment.ModelDir), a.db, nil, logging.Logger())

			if all {
				listing, err := classifier.ClassifyClients(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), listing)
				}
				return printClientSegments(cmd.OutOrStdout(), listing)
			}

			cl, err := classifier.Classify(ctx, clientID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cl)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Client %d: %s (%s, %s)\n",
				cl.ClientID, cl.Segment.Name, cl.Status, cl.Segment.Color)
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "classify every client")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printRecommendation(w io.Writer, rec *recommend.Recommendation) error {
	label := string(rec.Strategy)
	if rec.Algorithm != "" {
		label += " (" + rec.Algorithm + ")"
	}
	fmt.Fprintf(w, "Client %d: %s\n", rec.ClientID, label)
	if len(rec.Products) == 0 {
		_, err := fmt.Fprintln(w, "No products to recommend")
		return err
	}
	return printProducts(w, rec.Products)
}

func printProducts(w io.Writer, products []models.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\n", p.ID, p.Name, p.Price)
	}
	return tw.Flush()
}

func printClientSegments(w io.Writer, listing []segment.ClientSegment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSEGMENT\tSTATUS")
	for _, cs := range listing {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", cs.Client.ID, cs.Client.Name, cs.Classification.Segment.Name, cs.Classification.Status)
	}
	return tw.Flush()
}
