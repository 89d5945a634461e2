// Package syncapp implements catalog synchronization from external providers:
// category tree reconciliation, manufacturer and parameter dictionary imports,
// and the chunked product upsert pipeline. Every run is recorded in the sync
// run ledger and serialized through a shared lock.
package syncapp
