// Package cache memoizes shader compilation.
//
// Cache sits in front of a Compiler and keys artifacts by the SHA-256 of the
// preprocessed source plus the target, so two passes (or two presets) using
// the same shader compile once. Identical in-flight requests are collapsed
// with singleflight; unrelated keys live in different shards of a sharded
// LRU and never wait on each other.
//
// The cache is in-memory only.
package cache
