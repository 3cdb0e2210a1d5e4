// Package cache keeps synthesized speech so repeated readings of the same
// text do not go back to the engine. It layers an in-memory LRU cache (L1)
// over a zstd-compressed disk cache (L2) with TTL cleanup.
package cache
