// Package dispatch runs fetchkit requests off the caller's goroutine and
// reports each call as a three-state Result: Loading until the call finishes,
// then Success with the response or Failure with the cause.
//
// A Dispatcher bounds concurrency with a bulkhead and can pace calls with a
// token-bucket rate limiter. Failures never escape as panics; a panicking
// executor becomes a Failure with an INTERNAL_ERROR.
//
//	d, err := dispatch.New(client, dispatch.Config{Workers: 4})
//	call := d.Execute(ctx, req)
//	res, err := call.Wait(ctx)
//	if res.IsSuccess() {
//	    text, _ := res.Response().Text()
//	}
//
// A Watcher publishes results only when the request's change key differs from
// the previous submission, cancelling the superseded call:
//
//	w := d.Watch()
//	w.Submit(ctx, req)
//	for res := range w.Results() { ... }
//
// The dispatcher never retries.
package dispatch
