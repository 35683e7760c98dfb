// Package httputil provides the HTTP plumbing for fetching remote images.
//
// # Overview
//
//   - [Client]: GET with default headers, a size limit, retries and hooks
//   - [Retry]: retry with exponential backoff for transient failures
//   - [Cache]: file-based JSON cache with TTL, used to remember image
//     dimensions between runs
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. [Client] wraps
// network failures, 5xx responses and 429 responses; a 404 or other 4xx is
// returned immediately:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    data, err = fetch()
//	    return err
//	})
//
// # Caching
//
// [Cache] stores one JSON file per key under ~/.cache/rigwall/ by default.
// Keys are hashed, so any string is a valid key. Use [Cache.Namespace] to
// keep unrelated data apart:
//
//	dims := cache.Namespace("imageprobe:")
//	dims.Set(url, size)
//
// The cache can be cleared with `rigwall cache clear`.
package httputil
