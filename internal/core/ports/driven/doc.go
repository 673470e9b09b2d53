// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CacheStore: Namespaced key-value storage of resource results (SQLite, Redis, memory)
//   - JobStore: Job record persistence (SQLite, Redis, memory)
//   - TaskQueue: Hand-off of creation tasks to workers (SQLite, Redis, memory)
//   - ArticleStore: Article text, embeddings and MeSH terms (SQLite, Postgres, memory)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil when the corresponding summary source is never requested:
//
//   - EmbeddingService: Embeds candidate summary terms. Required for groups with terms.
//   - EntityExtractor: Named-entity extraction. Required for "named entities" summaries.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
