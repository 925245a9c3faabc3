// Package fetch retrieves remote images for the pipeline.
//
// HTTPFetcher downloads a URL with a timeout, a response size limit and
// retries on transient failures. Fetched bytes can be kept in a Store:
// MemoryCache holds them in process, RedisCache shares them between
// processes. CachingFetcher puts a Store in front of any Fetcher.
//
// All types in this package are safe for concurrent use.
package fetch
