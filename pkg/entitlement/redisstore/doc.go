// Package redisstore provides a Redis-backed implementation of the
// entitlement usage store using go-redis/v9.
//
// Counters are plain INCR keys of the form entitlement:usage:<user>:<period>
// with a TTL refreshed on every increment, so old-period keys expire on
// their own instead of requiring an explicit prune. Suitable when counter
// durability requirements are softer than the primary database's, e.g. as a
// hot-path store in front of asynchronous reconciliation.
package redisstore
