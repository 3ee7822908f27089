// Package sqlite persists localization runs and their per-step
// estimates to a SQLite database.
//
// Responsibilities: schema creation, run registration, per-step
// estimate inserts, and read queries for the plot/report tools.
// Key types: Run, StepRecord, RunStore.
//
// No filter logic is allowed in this package.
package sqlite
