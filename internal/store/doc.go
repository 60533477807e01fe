// Package store persists accessibility runs to a SQLite journal.
//
// The journal is never an authority: resolved configuration and final
// inventories are re-derivable from their inputs, and the recorded rows
// exist for diagnostics and replay verification. A recorded run holds the
// graph fingerprint it ran against, the resolved configuration and final
// inventory as canonical JSON, and the per-path outcomes in binding order.
//
// # Determinism
//
//   - Result rows carry seq INTEGER in binding order; reads ORDER BY seq
//   - All serialized columns use RFC 8785 canonical JSON
//   - Run ids are UUIDv7, so id order and creation order agree
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Writes are transactional and idempotent: re-recording a run id is a
// no-op, so crash-and-retry cannot duplicate rows.
package store
