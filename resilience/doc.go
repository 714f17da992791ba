// Package resilience implements the retry policy applied to remote calls.
//
// Retry re-runs an operation with exponential backoff while its error is
// transient. Waits observe the context, so cancelling a job during a backoff
// ends the wait at once and surfaces the context error rather than the last
// backend failure.
//
//	text, err := resilience.Retry(ctx, resilience.DefaultRetryPolicy(), func(ctx context.Context) (string, error) {
//	    return client.send(ctx, req)
//	})
package resilience
