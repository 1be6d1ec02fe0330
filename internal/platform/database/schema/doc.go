// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column used by the repositories.
//
// Repositories never spell identifiers inline; they reference these values
// so a rename touches one file and the migration.
package schema
