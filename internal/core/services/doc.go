// Package services implements the driving ports.
//
// ResourceService runs the reservation protocol over a CacheStore and
// dispatches creation to the Registry, where each resource kind names its
// cache namespace and creator. JobService records progress, Pipeline turns
// a dequeued Task into a finished resource and a final job record, and
// Worker runs pipelines from the TaskQueue.
//
// Nothing here imports an adapter. Numeric work is delegated to the
// clustering and summarize packages.
package services
