package cache

// CacheInterface defines the grouped key/value operations the archive
// aggregator reads through
type CacheInterface interface {
	Get(key, group string) (any, bool)
	Set(key string, value any, group string)
	Delete(key, group string)
	Len() int
}
