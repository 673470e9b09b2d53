// Package domain defines the core business entities for litmapper.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Params: FilterSetParams, ClusteringParams and ArticleGroupParams,
//     the content-addressed descriptions of derived resources
//   - Results: FilterSetResult, ClusteringResult and ArticleGroupResult
//   - Job: the client-visible progress record of a creation request
//   - Task: the unit of work handed to background workers
//   - Article: a literature record with its searchable text
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
