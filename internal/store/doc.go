// Package store provides SQLite-backed durable storage for chain
// runs and their sample streams.
//
// Two tables:
//   - runs: one row per chain run (grammar hash, top rule, seed, step
//     count), keyed by UUIDv7 run token
//   - samples: one row per chain step, keyed by (run_token, step),
//     carrying the held tree as canonical JSON plus its content hash
//
// Writes are idempotent: re-inserting an existing run token or
// (run_token, step) pair is silently ignored, so a crashed run can be
// resumed by replaying its sample stream.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Tree hashes are computed in internal/norm using canonical JSON and
// SHA-256 with domain separation.
package store
