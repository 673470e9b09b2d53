// Package clustering projects article embeddings to two dimensions and
// partitions the projection by density.
//
// The pipeline is:
//
//   - Reduce: a seeded fuzzy-topology manifold embedding (UMAP) of the
//     embeddings into the plane
//   - HDBSCAN: mutual-reachability minimum spanning tree, condensed
//     cluster tree and excess-of-mass selection, or a flat cut of the
//     single-linkage tree at a fixed distance
//   - Metrics: density-based cluster validity (DBCV), silhouette,
//     Davies-Bouldin and Dunn indices over the planar coordinates
//
// Every step is deterministic for a given seed.
package clustering
