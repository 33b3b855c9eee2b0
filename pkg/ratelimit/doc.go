// Package ratelimit provides rate limiting for outbound requests.
//
// This package spaces requests to Reddit and its image hosts so the
// scraper stays well within API etiquette.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - NewFixedDelay wraps a capacity-1 bucket to enforce a fixed pause
//     between downloads; this is the limiter the scraper uses
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - Better for consistent request patterns against the listing API
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// One download per second
//	limiter := ratelimit.NewFixedDelay(time.Second)
//
//	for _, url := range urls {
//	    limiter.Wait()
//	    // Download url
//	}
package ratelimit
