// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

/*
Package models defines the data structures shared across ShopSense.

Key Components:

  - Sale: one recorded sale line (client, product, quantity, total value, timestamp)
  - Product: catalog entry returned by recommendations and best-seller lists
  - Client: customer record used by the client listing
  - APIResponse: standardized JSON envelope for every HTTP endpoint

Sales are read-only to the analytics packages. Writes happen only through the
database package (demo seeding and tests).
*/
package models
