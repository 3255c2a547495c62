// Package todo defines the todosync domain: the Todo record, the filters that
// select visible subsets of todos, position updates and the error taxonomy
// shared by every layer.
//
// # Record Lifecycle
//
//   - Created by the store with a store-assigned ID, CreatedAt and a default
//     Position derived from CreatedAt (milliseconds since epoch)
//   - Mutated only through IsCompleted (toggle) and Position (reorder)
//   - Destroyed by delete or by clearing completed todos
//
// # Error Taxonomy
//
//   - VALIDATION: malformed input, rejected before any state change
//   - NOT_FOUND: the target record no longer exists (benign race outcome)
//   - TRANSIENT: storage or engine temporarily unavailable, safe to retry
//     except for create
package todo
