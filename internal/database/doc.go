// Package database provides SQLite-based storage for scan run history.
//
// This package implements the ScanDB, which stores:
//   - Complete scan reports as JSON for replay and comparison
//   - Per-page rows for cross-run page history queries
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
