package store

import "context"

/**
 * Store is the persistence boundary for everything worth keeping
 * across runs: archived run records, saved workflow documents and
 * whatever else fits a prefix + key blob shape. Implementations live
 * in the mem and postgres subpackages.
 */
type Store interface {
	Get(ctx context.Context, prefix, key string) ([]byte, error)
	Set(ctx context.Context, prefix, key string, value []byte) error
	/**
	 * Remove a prefix and key
	 * removing an unknown prefix + key does NOT return an error
	 */
	Remove(ctx context.Context, prefix, key string) error

	List(ctx context.Context, prefix string, iterator func(key string) bool) error
}
