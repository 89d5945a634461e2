// Package sync holds the domain model of the external catalog synchronization
// subsystem: the provider port through which raw catalog data is fetched, and
// the run ledger that records the outcome of every synchronization pass.
//
// Concrete provider adapters live in the infrastructure layer; the
// reconciliation and upsert machinery lives in the application layer.
package sync
