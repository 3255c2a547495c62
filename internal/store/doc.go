// Package store provides SQLite-backed durable storage for todos.
//
// The store is the Record Store of todosync: it assigns identity and
// timestamps, applies every mutation atomically and serializes conflicting
// writes to the same record.
//
// # Critical Patterns
//
// Atomic Batches
//   - ClearCompleted, UpdatePositions and Reorder run in one transaction
//   - Any failure rolls the whole batch back; nothing is partially applied
//
// Deterministic Reads
//   - All snapshots use: ORDER BY position ASC, created_at ASC, id ASC
//   - Matches todo.Todo.Before so SQL order and projection order agree
//
// Explicit Targets
//   - SetCompleted writes a target value, never a flip, so repeats are no-ops
//   - Unknown ids surface as NOT_FOUND, never as silent success
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single connection: SQLite allows one writer; the pool serializes writes
//
// SQLITE_BUSY and SQLITE_LOCKED are reported as TRANSIENT errors.
package store
