// Package sqlite provides a single-file SQLite implementation of the driven ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database connection backs every store:
//
//   - CacheStore: resource results and in-progress reservations
//   - JobStore: job status records
//   - TaskQueue: durable FIFO of creation tasks, shared by worker processes
//   - ArticleStore: article corpus with FTS5 full-text search, embeddings and MeSH terms
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.litmapper/data/litmapper.db
//
// # Concurrency
//
// Several processes may open the same file. Reservations rely on single-statement
// atomicity (INSERT ... ON CONFLICT DO NOTHING) and the queue claims tasks with
// DELETE ... RETURNING, so no two consumers see the same task.
package sqlite
