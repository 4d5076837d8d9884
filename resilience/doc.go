// Package resilience provides the concurrency and pacing limits used by the
// dispatch worker pool.
//
//   - Bulkhead: bounds the number of calls in flight, optionally waiting
//     up to MaxWait for a free slot.
//   - RateLimiter: token bucket pacing built on golang.org/x/time/rate.
//
// Neither retries anything; a rejected call is reported to the caller.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "dispatch", MaxConcurrent: 4})
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 20, Burst: 5})
//	err := rl.ExecuteWait(ctx, func() error {
//	    return bh.Execute(ctx, call)
//	})
package resilience
