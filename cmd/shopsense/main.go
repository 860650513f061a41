// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

// Package main is the ShopSense command line.
//
// # Commands
//
//	serve         run the JSON API under the supervisor tree
//	train         fit the RFM segmentation model and persist its artifacts
//	recommend     print product recommendations for a client
//	classify      print the segment of one client, or of every client
//	best-sellers  print the best-selling products
//	seed          fill an empty database with demo data
//
// # Configuration
//
// Every command loads configuration the same way: struct defaults, then the
// optional YAML file (CONFIG_PATH or ./config.yaml), then environment
// variables. Logging is initialized from the loaded configuration before the
// database is opened.
//
// # Lifecycle
//
// The segmentation model is trained offline by "train" and loaded once when
// "serve" starts. A missing model does not prevent the server from starting;
// classification then reports every client as unavailable until the model is
// trained and the server restarted.
//
// serve stops on SIGINT or SIGTERM. The supervisor cancels its services,
// the HTTP server drains in-flight requests within SHUTDOWN_TIMEOUT and the
// database is checkpointed and closed last.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "shopsense",
		Short:        "ShopSense sales analytics: recommendations and customer segments",
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newTrainCmd(),
		newRecommendCmd(),
		newClassifyCmd(),
		newBestSellersCmd(),
		newSeedCmd(),
	)
	return root
}
