// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shopsense/internal/logging"
	"github.com/tomtom215/shopsense/internal/segment"
	"github.com/tomtom215/shopsense/internal/segment/storage"
)

func newTrainCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the customer segmentation model and save its artifacts",
		Long: `Computes RFM features for every client with sales, fits the scaler and
k-means model, and atomically replaces the artifacts in the model directory.
A running server picks up the new model on restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			report, err := train(cmd.Context(), a)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return printTrainingReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func train(ctx context.Context, a *app) (*segment.TrainingReport, error) {
	store, err := storage.NewStore(a.cfg.Segment.ModelDir)
	if err != nil {
		return nil, err
	}
	trainer, err := segment.NewTrainer(
		segmentConfig(&a.cfg.Segment),
		segment.NewExtractor(a.db, nil),
		store,
		logging.Logger(),
	)
	if err != nil {
		return nil, err
	}
	return trainer.Train(ctx)
}

// printTrainingReport writes the de-normalized centroid table.
func printTrainingReport(w io.Writer, r *segment.TrainingReport) error {
	fmt.Fprintf(w, "Training %s\n", r.TrainingID)
	fmt.Fprintf(w, "Clients: %d  Inertia: %.4f  Iterations: %d  Duration: %s\n\n",
		r.CohortSize, r.Inertia, r.Iterations, r.Duration)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLUSTER\tSEGMENT\tCLIENTS\tRECENCY (days)\tFREQUENCY\tMONETARY")
	for _, c := range r.Clusters {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f\t%.1f\t%.2f\n",
			c.Cluster, c.Segment.Name, c.Size, c.Recency, c.Frequency, c.Monetary)
	}
	return tw.Flush()
}
