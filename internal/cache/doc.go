// Package cache provides a size-bounded LRU cache.
package cache
