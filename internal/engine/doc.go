// Package engine implements the todosync command loop and live views.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every mutation is submitted as a command and applied by one goroutine
// (Engine.Run). This gives:
// - A total order over committed mutations
// - Reorder and clear-completed batches that never interleave
// - Views that always match some prefix of committed mutations
//
// Command Flow:
// 1. Caller submits a command (CreateTodo, ToggleTodo, ...) which is enqueued
// 2. Run dequeues commands one at a time in FIFO order
// 3. The command is applied to the store in its own transaction
// 4. The revision clock advances and a full snapshot is read
// 5. The hub projects the snapshot per subscription and pushes changed views
// 6. The caller receives the result
//
// A caller that stops waiting (context cancelled) does not cancel its
// command: once enqueued it is applied.
//
// Live Views:
// Subscribe registers a filter with the hub. A subscription starts in the
// loading state and is primed by the loop with the current state. After that
// it receives a new View only when its projection changes. Delivery is
// latest-wins so a slow consumer never blocks the writer.
//
// One-shot reads (GetTodos) go straight to the store and do not wait for the
// loop.
package engine
