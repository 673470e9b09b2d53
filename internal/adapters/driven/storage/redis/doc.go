// Package redis provides Redis-backed implementations of the cache, job
// and task queue ports, for deployments where API servers and workers run
// as separate processes on separate hosts.
//
// Cache namespaces map to Redis hashes, jobs to JSON strings and the task
// queue to a list consumed with BRPOP. All keys share a configurable prefix.
package redis
