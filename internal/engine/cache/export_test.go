package cache

// Keys exposes the recency order to tests.
func Keys[K comparable, V any](c *LRU[K, V]) []K { return c.keys() }
