// Package httputil downloads remote feed archives.
//
// [Fetcher] issues a GET, retries transient failures with [Retry] and stores
// the body in a [cache.Cache] under the keyer's feed key:
//
//	f := httputil.NewFetcher(fileCache, cache.NewDefaultKeyer())
//	data, err := f.Get(ctx, "https://example.org/gtfs.zip")
//
// Transport errors, 429 and 5xx responses are retried. A 404 is reported as
// NOT_FOUND and other 4xx responses as NETWORK_ERROR without retrying.
package httputil
